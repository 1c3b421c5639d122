package recording

import (
	"testing"
)

func TestCommandType_String(t *testing.T) {
	tests := []struct {
		ct   CommandType
		want string
	}{
		{CmdSave, "Save"},
		{CmdSaveLayer, "SaveLayer"},
		{CmdSaveBackdropLayer, "SaveBackdropLayer"},
		{CmdRestore, "Restore"},
		{CmdRestoreToCount, "RestoreToCount"},
		{CmdSetMatrix, "SetMatrix"},
		{CmdConcat, "Concat"},
		{CmdResetMatrix, "ResetMatrix"},
		{CmdClipRect, "ClipRect"},
		{CmdClipPolygon, "ClipPolygon"},
		{CmdClear, "Clear"},
		{CmdDrawRect, "DrawRect"},
		{CmdDrawPolygon, "DrawPolygon"},
		{CmdDrawImageRect, "DrawImageRect"},
		{CommandType(254), "Unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.ct.String(); got != tt.want {
				t.Errorf("CommandType.String() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCommandType_IsDraw(t *testing.T) {
	draws := map[CommandType]bool{
		CmdClear:         true,
		CmdDrawRect:      true,
		CmdDrawPolygon:   true,
		CmdDrawImageRect: true,
	}
	for ct := CmdSave; ct <= CmdDrawImageRect; ct++ {
		if got := ct.IsDraw(); got != draws[ct] {
			t.Errorf("%v.IsDraw() = %v, want %v", ct, got, draws[ct])
		}
	}
}

func TestInvalidRef(t *testing.T) {
	if PaintRef(InvalidRef).IsValid() {
		t.Error("PaintRef(InvalidRef).IsValid() = true")
	}
	if ImageRef(InvalidRef).IsValid() || FilterRef(InvalidRef).IsValid() || PolygonRef(InvalidRef).IsValid() {
		t.Error("InvalidRef reported as valid")
	}
	if !PaintRef(0).IsValid() {
		t.Error("PaintRef(0).IsValid() = false")
	}
}
