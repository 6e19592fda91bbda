package inspector

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/hpungsan/lapak/internal/errors"
)

// Op names an inspector operation for callers that dispatch by string.
type Op string

const (
	OpText       Op = "text"
	OpLink       Op = "link"
	OpColor      Op = "color"
	OpBackground Op = "background"
	OpPadding    Op = "padding"
	OpMargin     Op = "margin"
	OpAlign      Op = "align"
	OpDelete     Op = "delete"
	OpDuplicate  Op = "duplicate"
	OpMoveUp     Op = "move_up"
	OpMoveDown   Op = "move_down"
	OpDraggable  Op = "draggable"
	OpMarkdown   Op = "markdown"
	OpImage      Op = "image"
)

// Ops lists every operation in the order the property panel shows them.
var Ops = []Op{
	OpText, OpLink, OpColor, OpBackground, OpPadding, OpMargin, OpAlign,
	OpDelete, OpDuplicate, OpMoveUp, OpMoveDown, OpDraggable, OpMarkdown, OpImage,
}

// ParseOp validates an operation name.
func ParseOp(s string) (Op, error) {
	op := Op(strings.ToLower(strings.TrimSpace(s)))
	for _, o := range Ops {
		if o == op {
			return op, nil
		}
	}
	names := make([]string, len(Ops))
	for i, o := range Ops {
		names[i] = string(o)
	}
	return "", errors.NewInvalidRequest(fmt.Sprintf("unknown op %q (valid: %s)", s, strings.Join(names, ", ")))
}

// Apply runs a string-valued operation. OpImage needs a resolved media item and
// must go through BindImage.
func (b *Bridge) Apply(op Op, value string) (bool, error) {
	switch op {
	case OpText:
		return b.SetText(value)
	case OpLink:
		return b.SetLink(value)
	case OpColor:
		return b.SetColor(value)
	case OpBackground:
		return b.SetBackground(value)
	case OpPadding, OpMargin:
		px, err := parsePixels(value)
		if err != nil {
			return false, err
		}
		if op == OpPadding {
			return b.SetPadding(px)
		}
		return b.SetMargin(px)
	case OpAlign:
		return b.SetTextAlign(value)
	case OpDelete:
		return b.Delete()
	case OpDuplicate:
		return b.Duplicate()
	case OpMoveUp:
		return b.MoveUp()
	case OpMoveDown:
		return b.MoveDown()
	case OpDraggable:
		return b.MakeDraggable()
	case OpMarkdown:
		return b.SetMarkdown(value)
	case OpImage:
		return false, errors.NewInvalidRequest("image op requires a media id")
	}
	return false, errors.NewInvalidRequest(fmt.Sprintf("unknown op %q", op))
}

// parsePixels accepts "12" or "12px".
func parsePixels(value string) (int, error) {
	v := strings.TrimSuffix(strings.ToLower(strings.TrimSpace(value)), "px")
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return 0, errors.NewInvalidRequest(fmt.Sprintf("expected whole pixels, got %q", value))
	}
	return n, nil
}
