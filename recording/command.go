package recording

import (
	"image/color"

	"github.com/gogpu/compositor/geom"
)

// CommandType identifies the type of a command.
type CommandType uint8

const (
	// State commands
	CmdSave              CommandType = iota // Save matrix and clip
	CmdSaveLayer                            // Open a transparent layer
	CmdSaveBackdropLayer                    // Open a layer seeded with filtered destination pixels
	CmdRestore                              // Pop one save
	CmdRestoreToCount                       // Pop saves down to a count
	CmdSetMatrix                            // Replace the matrix
	CmdConcat                               // Pre-concatenate the matrix
	CmdResetMatrix                          // Reset the matrix to identity
	CmdClipRect                             // Intersect the clip with a rect
	CmdClipPolygon                          // Intersect the clip with a polygon

	// Drawing commands
	CmdClear         // Fill the clip, replacing the destination
	CmdDrawRect      // Fill or stroke a rect
	CmdDrawPolygon   // Fill or stroke a polygon
	CmdDrawImageRect // Sample an image into a rect
)

// commandTypeNames maps CommandType values to their string representation.
var commandTypeNames = [...]string{
	CmdSave:              "Save",
	CmdSaveLayer:         "SaveLayer",
	CmdSaveBackdropLayer: "SaveBackdropLayer",
	CmdRestore:           "Restore",
	CmdRestoreToCount:    "RestoreToCount",
	CmdSetMatrix:         "SetMatrix",
	CmdConcat:            "Concat",
	CmdResetMatrix:       "ResetMatrix",
	CmdClipRect:          "ClipRect",
	CmdClipPolygon:       "ClipPolygon",
	CmdClear:             "Clear",
	CmdDrawRect:          "DrawRect",
	CmdDrawPolygon:       "DrawPolygon",
	CmdDrawImageRect:     "DrawImageRect",
}

// String returns the string representation of a CommandType.
func (c CommandType) String() string {
	if int(c) < len(commandTypeNames) {
		return commandTypeNames[c]
	}
	return "Unknown"
}

// IsDraw reports whether c touches pixels.
func (c CommandType) IsDraw() bool {
	return c >= CmdClear && c <= CmdDrawImageRect
}

// Command is the interface implemented by all command types.
type Command interface {
	// Type returns the CommandType for this command.
	Type() CommandType
}

// --------------------------------------------------------------------------
// Reference Types
// --------------------------------------------------------------------------

// PaintRef is a reference to a paint in the resource pool.
type PaintRef uint32

// ImageRef is a reference to an image in the resource pool.
type ImageRef uint32

// FilterRef is a reference to an image filter in the resource pool.
type FilterRef uint32

// PolygonRef is a reference to a polygon in the resource pool.
type PolygonRef uint32

// InvalidRef is the sentinel value for an absent reference, such as a
// nil paint.
const InvalidRef = ^uint32(0)

// IsValid returns true if the reference points to a paint.
func (r PaintRef) IsValid() bool { return uint32(r) != InvalidRef }

// IsValid returns true if the reference points to an image.
func (r ImageRef) IsValid() bool { return uint32(r) != InvalidRef }

// IsValid returns true if the reference points to a filter.
func (r FilterRef) IsValid() bool { return uint32(r) != InvalidRef }

// IsValid returns true if the reference points to a polygon.
func (r PolygonRef) IsValid() bool { return uint32(r) != InvalidRef }

// --------------------------------------------------------------------------
// State Commands
// --------------------------------------------------------------------------

// SaveCommand pushes the matrix and clip.
type SaveCommand struct{}

// Type implements Command.
func (SaveCommand) Type() CommandType { return CmdSave }

// SaveLayerCommand opens a layer composited with Paint on restore.
type SaveLayerCommand struct {
	// Bounds limits the layer in draw coordinates. Nil means unbounded.
	Bounds *geom.Rect
	Paint  PaintRef
}

// Type implements Command.
func (SaveLayerCommand) Type() CommandType { return CmdSaveLayer }

// SaveBackdropLayerCommand opens a layer whose initial contents are the
// destination beneath Bounds run through Filter.
type SaveBackdropLayerCommand struct {
	Bounds geom.Rect
	Paint  PaintRef
	Filter FilterRef
}

// Type implements Command.
func (SaveBackdropLayerCommand) Type() CommandType { return CmdSaveBackdropLayer }

// RestoreCommand pops the most recent save.
type RestoreCommand struct{}

// Type implements Command.
func (RestoreCommand) Type() CommandType { return CmdRestore }

// RestoreToCountCommand pops saves until the save count is Count. Count is
// relative to the recording, whose base count is 1.
type RestoreToCountCommand struct {
	Count int
}

// Type implements Command.
func (RestoreToCountCommand) Type() CommandType { return CmdRestoreToCount }

// SetMatrixCommand replaces the matrix.
type SetMatrixCommand struct {
	Matrix geom.Matrix
}

// Type implements Command.
func (SetMatrixCommand) Type() CommandType { return CmdSetMatrix }

// ConcatCommand pre-concatenates Matrix onto the current matrix.
type ConcatCommand struct {
	Matrix geom.Matrix
}

// Type implements Command.
func (ConcatCommand) Type() CommandType { return CmdConcat }

// ResetMatrixCommand resets the matrix to identity.
type ResetMatrixCommand struct{}

// Type implements Command.
func (ResetMatrixCommand) Type() CommandType { return CmdResetMatrix }

// ClipRectCommand intersects the clip with Rect.
type ClipRectCommand struct {
	Rect      geom.Rect
	AntiAlias bool
}

// Type implements Command.
func (ClipRectCommand) Type() CommandType { return CmdClipRect }

// ClipPolygonCommand intersects the clip with a closed polygon.
type ClipPolygonCommand struct {
	Polygon   PolygonRef
	AntiAlias bool
}

// Type implements Command.
func (ClipPolygonCommand) Type() CommandType { return CmdClipPolygon }

// --------------------------------------------------------------------------
// Drawing Commands
// --------------------------------------------------------------------------

// ClearCommand fills the clip with Color, replacing the destination.
type ClearCommand struct {
	Color color.NRGBA
}

// Type implements Command.
func (ClearCommand) Type() CommandType { return CmdClear }

// DrawRectCommand fills or strokes Rect.
type DrawRectCommand struct {
	Rect  geom.Rect
	Paint PaintRef
}

// Type implements Command.
func (DrawRectCommand) Type() CommandType { return CmdDrawRect }

// DrawPolygonCommand fills or strokes a closed polygon.
type DrawPolygonCommand struct {
	Polygon PolygonRef
	Paint   PaintRef
}

// Type implements Command.
func (DrawPolygonCommand) Type() CommandType { return CmdDrawPolygon }

// DrawImageRectCommand samples the Src texels of an image into Dst.
type DrawImageRectCommand struct {
	Image ImageRef
	Src   geom.Rect
	Dst   geom.Rect
	Paint PaintRef
}

// Type implements Command.
func (DrawImageRectCommand) Type() CommandType { return CmdDrawImageRect }
