package publish

import (
	"github.com/kontur-labs/ticketsearch/internal/domain/record"
)

// Attachment roles and ticket kinds the exclusion policy keys on.
const (
	roleTranscript    = "transcript"
	ticketKindMeeting = "meeting"
)

// ExclusionPolicy vetoes records that must never reach the index. It is
// consulted on every publish entry point, including bulk resync, so no
// trigger can bypass it.
type ExclusionPolicy struct{}

// Check reports whether the record is excluded and why. Meeting transcripts
// are large enough to time out the store's indexing pipeline, so transcript
// attachments on meeting tickets are never published.
func (ExclusionPolicy) Check(rec record.Record) (bool, string) {
	att, ok := rec.(record.Attachment)
	if !ok {
		return false, ""
	}
	if att.Role == roleTranscript && att.TicketKind == ticketKindMeeting {
		return true, "meeting transcript attachments are excluded from indexing"
	}
	return false, ""
}
