package service

import "fmt"

// ArchiveError indicates the uploaded zip cannot be imported at all: it
// is malformed, has too many entries, an entry is too large, or it holds
// no workout files. The whole batch fails before any file is processed.
type ArchiveError struct {
	Reason string
}

func (e *ArchiveError) Error() string {
	return fmt.Sprintf("archive error: %s", e.Reason)
}

// EquipmentError indicates an invalid equipment reference. Equipment is
// resolved once, up front; this aborts the entire import.
type EquipmentError struct {
	ID int64
}

func (e *EquipmentError) Error() string {
	return fmt.Sprintf("invalid equipment reference: %d", e.ID)
}
