package ticketsearch

import (
	"context"
	"time"

	"github.com/kontur-labs/ticketsearch/internal/domain/record"
)

// Record is one tracker record eligible for indexing. The set of record
// types is closed; each maps to one object kind in the index.
type Record interface {
	toRecord() record.Record
}

// Ticket is a tracker issue.
type Ticket struct {
	TicketID    string
	ProjectID   string
	OrgID       string
	TicketKind  string
	Title       string
	Description string
	Status      string
	URL         string
	Labels      []string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (t Ticket) toRecord() record.Record {
	return record.Ticket{
		TicketID: t.TicketID, ProjectID: t.ProjectID, OrgID: t.OrgID,
		TicketKind: t.TicketKind, Title: t.Title, Description: t.Description,
		Status: t.Status, URL: t.URL, Labels: t.Labels,
		CreatedAt: t.CreatedAt, UpdatedAt: t.UpdatedAt,
	}
}

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

func (c Comment) toRecord() record.Record {
	return record.Comment{
		CommentID: c.CommentID, TicketID: c.TicketID, ProjectID: c.ProjectID,
		OrgID: c.OrgID, Author: c.Author, Body: c.Body, URL: c.URL,
		CreatedAt: c.CreatedAt, UpdatedAt: c.UpdatedAt,
	}
}

// Attachment is a file attached to a ticket. Content carries the raw bytes
// for text-like formats; binary files may leave it nil.
type Attachment struct {
	AttachmentID string
	TicketID     string
	ProjectID    string
	OrgID        string
	Name         string
	MimeType     string
	SizeBytes    int64
	SHA256       string
	Role         string
	TicketKind   string
	Content      []byte
	URL          string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (a Attachment) toRecord() record.Record {
	return record.Attachment{
		AttachmentID: a.AttachmentID, TicketID: a.TicketID, ProjectID: a.ProjectID,
		OrgID: a.OrgID, Name: a.Name, MimeType: a.MimeType, SizeBytes: a.SizeBytes,
		SHA256: a.SHA256, Role: a.Role, TicketKind: a.TicketKind,
		Content: a.Content, URL: a.URL,
		CreatedAt: a.CreatedAt, UpdatedAt: a.UpdatedAt,
	}
}

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

func (p Project) toRecord() record.Record {
	return record.Project{
		ProjectKey: p.ProjectKey, OrgID: p.OrgID, Name: p.Name,
		Description: p.Description, Status: p.Status, URL: p.URL,
		CreatedAt: p.CreatedAt, UpdatedAt: p.UpdatedAt,
	}
}

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

func (c Change) toRecord() record.Record {
	return record.Change{
		ChangeID: c.ChangeID, TicketID: c.TicketID, ProjectID: c.ProjectID,
		OrgID: c.OrgID, Field: c.Field, OldValue: c.OldValue,
		NewValue: c.NewValue, Author: c.Author, CreatedAt: c.CreatedAt,
	}
}

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

func (n Node) toRecord() record.Record {
	return record.Node{
		NodeID: n.NodeID, ProjectID: n.ProjectID, OrgID: n.OrgID,
		Hostname: n.Hostname, Notes: n.Notes, Status: n.Status, URL: n.URL,
		CreatedAt: n.CreatedAt, UpdatedAt: n.UpdatedAt,
	}
}

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

func (r Release) toRecord() record.Record {
	return record.Release{
		ReleaseID: r.ReleaseID, ProjectID: r.ProjectID, OrgID: r.OrgID,
		Version: r.Version, Notes: r.Notes, Status: r.Status, URL: r.URL,
		CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt,
	}
}

// ExternalIssue is a locally mirrored issue from an external tracker.
type ExternalIssue struct {
	IssueID      string
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

func (e ExternalIssue) toRecord() record.Record {
	return record.ExternalIssue{
		IssueID: e.IssueID, ProjectID: e.ProjectID, OrgID: e.OrgID,
		SourceSystem: e.SourceSystem, ExternalKey: e.ExternalKey,
		Title: e.Title, Body: e.Body, State: e.State, Labels: e.Labels,
		Comments: e.Comments, URL: e.URL,
		CreatedAt: e.CreatedAt, UpdatedAt: e.UpdatedAt,
	}
}

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

func (e ExternalPR) toRecord() record.Record {
	return record.ExternalPR{
		PRID: e.PRID, ProjectID: e.ProjectID, OrgID: e.OrgID,
		SourceSystem: e.SourceSystem, ExternalKey: e.ExternalKey,
		Title: e.Title, Body: e.Body, State: e.State, Labels: e.Labels,
		Comments: e.Comments, URL: e.URL,
		CreatedAt: e.CreatedAt, UpdatedAt: e.UpdatedAt,
	}
}

// IndexedObject is the canonical indexed form of a record, as stored.
type IndexedObject struct {
	Kind        string
	ObjectID    string
	ProjectID   string
	Title       string
	Text        string
	Status      string
	URL         string
	ExternalKey string
	Tags        []string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// PublishResult describes what happened to one published record.
type PublishResult struct {
	// Outcome is "indexed", "skipped", or "unsupported".
	Outcome string
	Reason  string
	StoreID string
}

// SearchRequest holds query parameters. Mode is "hybrid" (default),
// "keyword", or "similar". Alpha nil applies the engine default blend.
type SearchRequest struct {
	ProjectID string
	Query     string
	Mode      string
	Filters   map[string]string
	Limit     int
	Alpha     *float64
}

// Hit is one ranked search result.
type Hit struct {
	Kind        string
	ObjectID    string
	ProjectID   string
	Title       string
	URL         string
	Status      string
	ExternalKey string
	Score       float64
	UpdatedAt   time.Time
}

// SyncFailure identifies one record that could not be indexed during a
// resync.
type SyncFailure struct {
	Kind     string
	RecordID string
	Err      string
}

// SyncReport summarizes a project resync. Counts are keyed by object kind.
type SyncReport struct {
	ProjectID string
	Indexed   map[string]int
	Skipped   map[string]int
	Failures  []SyncFailure
}

// Embedder vectorizes text for hybrid and similarity search.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Refetcher fetches the live state of a mirrored issue at index time.
// externalKey is "owner/repo#number".
type Refetcher interface {
	FetchIssue(ctx context.Context, externalKey string) (RemoteIssue, error)
}

// RemoteIssue is the live state of a mirrored issue or pull request.
type RemoteIssue struct {
	Title     string
	Body      string
	State     string
	Labels    []string
	Comments  []string
	URL       string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Source lists a project's records for resync, one object kind at a time.
type Source interface {
	ListRecords(ctx context.Context, projectID, kind string) ([]Record, error)
}
