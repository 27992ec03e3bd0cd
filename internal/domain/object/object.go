package object

import (
	"fmt"
	"time"
)

// Kind discriminates the domain record types projected into the index.
type Kind string

// Supported object kinds.
const (
	KindTicket        Kind = "ticket"
	KindComment       Kind = "comment"
	KindAttachment    Kind = "attachment"
	KindProject       Kind = "project"
	KindChange        Kind = "change"
	KindNode          Kind = "node"
	KindRelease       Kind = "release"
	KindExternalIssue Kind = "external-issue"
	KindExternalPR    Kind = "external-pr"
)

// Kinds lists every supported kind in sync walk order.
func Kinds() []Kind {
	return []Kind{
		KindTicket, KindComment, KindAttachment, KindProject,
		KindChange, KindNode, KindRelease, KindExternalIssue, KindExternalPR,
	}
}

// IsValid checks if the kind is one of the supported values.
func (k Kind) IsValid() bool {
	switch k {
	case KindTicket, KindComment, KindAttachment, KindProject,
		KindChange, KindNode, KindRelease, KindExternalIssue, KindExternalPR:
		return true
	}
	return false
}

// Object is the canonical shape every domain record is serialized into
// before being sent to the store. It has no independent persistence: it is
// built fresh on each publish from the current record state and discarded.
type Object struct {
	Kind      Kind
	ObjectID  string
	ProjectID string
	Title     string
	Text      string
	CreatedAt time.Time
	UpdatedAt time.Time

	// Optional fields, present only when meaningful for the kind.
	OrgID          string
	Status         string
	URL            string
	SourceSystem   string
	ExternalKey    string
	ParentObjectID string
	MimeType       string
	SizeBytes      int64
	SHA256         string
	Tags           []string
}

// Validate checks the fields the store addressing depends on.
func (o *Object) Validate() error {
	if !o.Kind.IsValid() {
		return fmt.Errorf("invalid object kind: %q", o.Kind)
	}
	if o.ObjectID == "" {
		return fmt.Errorf("object ID is required")
	}
	return nil
}

// Normalize defaults missing timestamps to now and forces both to UTC.
// The serializer, not the store, owns canonical completeness.
func (o *Object) Normalize(now time.Time) {
	if o.CreatedAt.IsZero() {
		o.CreatedAt = now
	}
	if o.UpdatedAt.IsZero() {
		o.UpdatedAt = now
	}
	o.CreatedAt = o.CreatedAt.UTC()
	o.UpdatedAt = o.UpdatedAt.UTC()
}
