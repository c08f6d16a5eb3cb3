package editor

// EditType categorizes an edit for undo-group merging: consecutive
// edits of the same mergeable type fold into one undo group.
type EditType uint8

const (
	EditTypeOther EditType = iota
	EditTypeInsertChars
	EditTypeInsertNewline
	EditTypeDelete
	EditTypeIndent
	EditTypeUndo
	EditTypeRedo
	EditTypeTranspose
	EditTypeSurround
)

func (t EditType) String() string {
	switch t {
	case EditTypeInsertChars:
		return "insert_chars"
	case EditTypeInsertNewline:
		return "insert_newline"
	case EditTypeDelete:
		return "delete"
	case EditTypeIndent:
		return "indent"
	case EditTypeUndo:
		return "undo"
	case EditTypeRedo:
		return "redo"
	case EditTypeTranspose:
		return "transpose"
	case EditTypeSurround:
		return "surround"
	}
	return "other"
}

// BreaksUndoGroup reports whether an edit of this type starts a new
// undo group after one of type previous. Other and Transpose always
// break, even from themselves.
func (t EditType) BreaksUndoGroup(previous EditType) bool {
	return t == EditTypeOther || t == EditTypeTranspose || t != previous
}
