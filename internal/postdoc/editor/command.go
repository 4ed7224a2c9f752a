package editor

import (
	"fmt"

	"github.com/agencia-site/postdoc/internal/postdoc/editor/edtypes"
)

// Command - сериализуемое описание одного действия панели инструментов.
type Command struct {
	Op        string            `json:"op" validate:"required"`
	Selection Selection         `json:"selection"`
	Mark      string            `json:"mark,omitempty"`
	Kind      string            `json:"kind,omitempty"`
	Kinds     []string          `json:"kinds,omitempty"`
	Key       string            `json:"key,omitempty"`
	Value     string            `json:"value,omitempty"`
	Level     int               `json:"level,omitempty"`
	Href      string            `json:"href,omitempty"`
	Text      string            `json:"text,omitempty"`
	Attrs     map[string]string `json:"attrs,omitempty"`
	Rows      int               `json:"rows,omitempty"`
	Cols      int               `json:"cols,omitempty"`
	Header    bool              `json:"withHeaderRow,omitempty"`
}

// Ops - имена операций, которые принимает Exec.
var Ops = []string{
	"undo", "redo", "toggleMark", "setLink", "unsetLink", "setTextStyle", "unsetTextStyle",
	"toggleHighlight", "setBlockType", "setParagraph", "setHeading", "toggleList",
	"toggleBlockquote", "setNodeAttribute", "resetNodeAttribute", "setLineHeight",
	"unsetLineHeight", "setTextAlign", "unsetTextAlign", "insertAtomicNode", "setCustomButton",
	"setHorizontalRule", "setImage", "insertTable", "insertText", "splitBlock", "deleteSelection",
}

func kindArg(name string) (edtypes.Kind, error) {
	k, ok := edtypes.KindByName(name)
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnsupportedKind, name)
	}
	return k, nil
}

// Exec выполняет команду. Ошибки валидации возвращаются без изменения документа.
func (e *Editor) Exec(cmd Command) error {
	sel := cmd.Selection
	switch cmd.Op {
	case "undo":
		e.Undo()
		return nil
	case "redo":
		e.Redo()
		return nil
	case "toggleMark":
		m, ok := edtypes.MarkByName(cmd.Mark)
		if !ok {
			return fmt.Errorf("%w: mark %q", ErrUnsupportedKind, cmd.Mark)
		}
		return e.ToggleMark(sel, m)
	case "setLink":
		return e.SetLink(sel, cmd.Href)
	case "unsetLink":
		return e.UnsetLink(sel)
	case "setTextStyle":
		return e.SetTextStyle(sel, cmd.Key, cmd.Value)
	case "unsetTextStyle":
		return e.UnsetTextStyle(sel, cmd.Key)
	case "toggleHighlight":
		return e.ToggleHighlight(sel, cmd.Value)
	case "setBlockType":
		k, err := kindArg(cmd.Kind)
		if err != nil {
			return err
		}
		return e.SetBlockType(sel, k, levelArg(cmd.Level))
	case "setParagraph":
		return e.SetBlockType(sel, edtypes.KindParagraph, "")
	case "setHeading":
		return e.SetBlockType(sel, edtypes.KindHeading, levelArg(cmd.Level))
	case "toggleList":
		k, err := kindArg(cmd.Kind)
		if err != nil {
			return err
		}
		return e.ToggleList(sel, k)
	case "toggleBlockquote":
		return e.ToggleBlockquote(sel)
	case "setNodeAttribute", "resetNodeAttribute":
		kinds := make([]edtypes.Kind, 0, len(cmd.Kinds))
		for _, name := range cmd.Kinds {
			k, err := kindArg(name)
			if err != nil {
				return err
			}
			kinds = append(kinds, k)
		}
		if cmd.Op == "setNodeAttribute" {
			return e.SetNodeAttribute(sel, kinds, cmd.Key, cmd.Value)
		}
		return e.ResetNodeAttribute(sel, kinds, cmd.Key)
	case "setLineHeight":
		return e.SetLineHeight(sel, cmd.Value)
	case "unsetLineHeight":
		return e.UnsetLineHeight(sel)
	case "setTextAlign":
		return e.SetTextAlign(sel, cmd.Value)
	case "unsetTextAlign":
		return e.UnsetTextAlign(sel)
	case "insertAtomicNode":
		k, err := kindArg(cmd.Kind)
		if err != nil {
			return err
		}
		return e.InsertAtomicNode(sel, k, cmd.Attrs)
	case "setCustomButton":
		return e.InsertAtomicNode(sel, edtypes.KindButton, cmd.Attrs)
	case "setHorizontalRule":
		return e.InsertHorizontalRule(sel)
	case "setImage":
		return e.InsertAtomicNode(sel, edtypes.KindImage, cmd.Attrs)
	case "insertTable":
		return e.InsertTable(sel, cmd.Rows, cmd.Cols, cmd.Header)
	case "insertText":
		return e.InsertText(sel, cmd.Text)
	case "splitBlock":
		return e.SplitBlock(sel)
	case "deleteSelection":
		return e.DeleteSelection(sel)
	}
	return fmt.Errorf("%w: %q", ErrUnknownOp, cmd.Op)
}

func levelArg(level int) string {
	if level == 0 {
		return ""
	}
	return fmt.Sprint(level)
}
