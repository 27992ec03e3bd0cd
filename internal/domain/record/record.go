// Package record defines the closed set of domain records the tracker
// publishes into the index. Collaborators construct these; the engine only
// reads them. The union is sealed: anything outside it is reported as
// unsupported by the serializer, never as an error.
package record

import (
	"time"

	"github.com/kontur-labs/ticketsearch/internal/domain/object"
)

// Record is one domain record eligible for indexing.
type Record interface {
	Kind() object.Kind
	ID() string
	Project() string

	sealed()
}

// Ticket is a tracker issue.
type Ticket struct {
	TicketID    string
	ProjectID   string
	OrgID       string
	TicketKind  string // e.g. "bug", "task", "meeting"
	Title       string
	Description string
	Status      string
	URL         string
	Labels      []string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (t Ticket) Kind() object.Kind { return object.KindTicket }
func (t Ticket) ID() string        { return t.TicketID }
func (t Ticket) Project() string   { return t.ProjectID }
func (Ticket) sealed()             {}

// Comment is a ticket comment.
type Comment struct {
	CommentID string
	TicketID  string
	ProjectID string
	OrgID     string
	Author    string
	Body      string
	URL       string
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (c Comment) Kind() object.Kind { return object.KindComment }
func (c Comment) ID() string        { return c.CommentID }
func (c Comment) Project() string   { return c.ProjectID }
func (Comment) sealed()             {}

// Attachment is a file attached to a ticket. Content carries the file bytes
// for text-like formats; it may be nil for binary files, whose canonical
// text is synthesized from metadata instead.
type Attachment struct {
	AttachmentID string
	TicketID     string
	ProjectID    string
	OrgID        string
	Name         string
	MimeType     string
	SizeBytes    int64
	SHA256       string
	Role         string // e.g. "transcript", "screenshot"
	TicketKind   string // kind of the owning ticket, for exclusion checks
	Content      []byte
	URL          string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (a Attachment) Kind() object.Kind { return object.KindAttachment }
func (a Attachment) ID() string        { return a.AttachmentID }
func (a Attachment) Project() string   { return a.ProjectID }
func (Attachment) sealed()             {}

// Project is the tracker project metadata record.
type Project struct {
	ProjectKey  string
	OrgID       string
	Name        string
	Description string
	Status      string
	URL         string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (p Project) Kind() object.Kind { return object.KindProject }
func (p Project) ID() string        { return p.ProjectKey }
func (p Project) Project() string   { return p.ProjectKey }
func (Project) sealed()             {}

// Change is a recorded state transition on a ticket.
type Change struct {
	ChangeID  string
	TicketID  string
	ProjectID string
	OrgID     string
	Field     string
	OldValue  string
	NewValue  string
	Author    string
	CreatedAt time.Time
}

func (c Change) Kind() object.Kind { return object.KindChange }
func (c Change) ID() string        { return c.ChangeID }
func (c Change) Project() string   { return c.ProjectID }
func (Change) sealed()             {}

// Node is an infrastructure node tracked by the project.
type Node struct {
	NodeID    string
	ProjectID string
	OrgID     string
	Hostname  string
	Notes     string
	Status    string
	URL       string
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (n Node) Kind() object.Kind { return object.KindNode }
func (n Node) ID() string        { return n.NodeID }
func (n Node) Project() string   { return n.ProjectID }
func (Node) sealed()             {}

// Release is a project release record.
type Release struct {
	ReleaseID string
	ProjectID string
	OrgID     string
	Version   string
	Notes     string
	Status    string
	URL       string
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (r Release) Kind() object.Kind { return object.KindRelease }
func (r Release) ID() string        { return r.ReleaseID }
func (r Release) Project() string   { return r.ProjectID }
func (Release) sealed()             {}

// ExternalIssue is a locally mirrored issue from an external tracker.
// The mirror fields are the fallback when a live refetch fails.
type ExternalIssue struct {
	IssueID      string
	ProjectID    string
	OrgID        string
	SourceSystem string // e.g. "github"
	ExternalKey  string // e.g. "owner/repo#123"
	Title        string
	Body         string
	State        string
	Labels       []string
	Comments     []string
	URL          string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (e ExternalIssue) Kind() object.Kind { return object.KindExternalIssue }
func (e ExternalIssue) ID() string        { return e.IssueID }
func (e ExternalIssue) Project() string   { return e.ProjectID }
func (ExternalIssue) sealed()             {}

// ExternalPR is a locally mirrored pull request from an external tracker.
type ExternalPR struct {
	PRID         string
	ProjectID    string
	OrgID        string
	SourceSystem string
	ExternalKey  string
	Title        string
	Body         string
	State        string
	Labels       []string
	Comments     []string
	URL          string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (e ExternalPR) Kind() object.Kind { return object.KindExternalPR }
func (e ExternalPR) ID() string        { return e.PRID }
func (e ExternalPR) Project() string   { return e.ProjectID }
func (ExternalPR) sealed()             {}
