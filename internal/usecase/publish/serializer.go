package publish

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/kontur-labs/ticketsearch/internal/domain/object"
	"github.com/kontur-labs/ticketsearch/internal/domain/record"
	"github.com/kontur-labs/ticketsearch/internal/metrics"
)

// Serializer maps domain records into the canonical object shape. The only
// I/O it ever performs is the optional live refetch of mirrored issues; it
// never touches the store.
type Serializer struct {
	fetcher Refetcher
	logger  *zap.Logger
}

// NewSerializer creates a serializer. fetcher may be nil; refetch requests
// then always use the local mirror.
func NewSerializer(fetcher Refetcher, logger *zap.Logger) *Serializer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Serializer{fetcher: fetcher, logger: logger}
}

// Serialize converts one domain record. The second return is false for
// record types outside the supported set; callers treat that as "nothing
// to do", not as an error.
func (s *Serializer) Serialize(ctx context.Context, rec record.Record, refetch bool) (object.Object, bool) {
	switch r := rec.(type) {
	case record.Ticket:
		return serializeTicket(r), true
	case record.Comment:
		return serializeComment(r), true
	case record.Attachment:
		return serializeAttachment(r), true
	case record.Project:
		return serializeProject(r), true
	case record.Change:
		return serializeChange(r), true
	case record.Node:
		return serializeNode(r), true
	case record.Release:
		return serializeRelease(r), true
	case record.ExternalIssue:
		return s.serializeExternal(ctx, externalMirror{
			kind: object.KindExternalIssue, id: r.IssueID, projectID: r.ProjectID,
			orgID: r.OrgID, sourceSystem: r.SourceSystem, externalKey: r.ExternalKey,
			title: r.Title, body: r.Body, state: r.State, labels: r.Labels,
			comments: r.Comments, url: r.URL, createdAt: r.CreatedAt, updatedAt: r.UpdatedAt,
		}, refetch), true
	case record.ExternalPR:
		return s.serializeExternal(ctx, externalMirror{
			kind: object.KindExternalPR, id: r.PRID, projectID: r.ProjectID,
			orgID: r.OrgID, sourceSystem: r.SourceSystem, externalKey: r.ExternalKey,
			title: r.Title, body: r.Body, state: r.State, labels: r.Labels,
			comments: r.Comments, url: r.URL, createdAt: r.CreatedAt, updatedAt: r.UpdatedAt,
		}, refetch), true
	default:
		return object.Object{}, false
	}
}

func serializeTicket(r record.Ticket) object.Object {
	return object.Object{
		Kind:      object.KindTicket,
		ObjectID:  r.TicketID,
		ProjectID: r.ProjectID,
		OrgID:     r.OrgID,
		Title:     r.Title,
		Text:      r.Description,
		Status:    r.Status,
		URL:       r.URL,
		Tags:      r.Labels,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

func serializeComment(r record.Comment) object.Object {
	title := "Comment"
	if r.Author != "" {
		title = fmt.Sprintf("Comment by %s", r.Author)
	}
	return object.Object{
		Kind:           object.KindComment,
		ObjectID:       r.CommentID,
		ProjectID:      r.ProjectID,
		OrgID:          r.OrgID,
		Title:          title,
		Text:           r.Body,
		URL:            r.URL,
		ParentObjectID: r.TicketID,
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
}

func serializeAttachment(r record.Attachment) object.Object {
	return object.Object{
		Kind:           object.KindAttachment,
		ObjectID:       r.AttachmentID,
		ProjectID:      r.ProjectID,
		OrgID:          r.OrgID,
		Title:          r.Name,
		Text:           attachmentText(r),
		URL:            r.URL,
		ParentObjectID: r.TicketID,
		MimeType:       r.MimeType,
		SizeBytes:      r.SizeBytes,
		SHA256:         r.SHA256,
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
}

// attachmentText is the content-extraction rule: text-like attachments are
// indexed by their decoded byte content so document bodies are searchable;
// everything else gets a synthesized metadata line.
func attachmentText(r record.Attachment) string {
	if isTextLike(r.MimeType, r.Name) && utf8.Valid(r.Content) && len(r.Content) > 0 {
		return string(r.Content)
	}
	return fmt.Sprintf("Attachment: %s (%s, %d bytes)", r.Name, r.MimeType, r.SizeBytes)
}

// textLikeMimeTypes are non-"text/*" MIME types still treated as text.
var textLikeMimeTypes = map[string]bool{
	"application/json":       true,
	"application/xml":        true,
	"application/x-yaml":     true,
	"application/yaml":       true,
	"application/javascript": true,
	"application/markdown":   true,
	"application/sql":        true,
}

// textLikeExtensions cover attachments uploaded without a usable MIME type.
var textLikeExtensions = map[string]bool{
	".md": true, ".markdown": true, ".txt": true, ".rst": true,
	".adoc": true, ".log": true, ".csv": true, ".json": true,
	".yaml": true, ".yml": true, ".xml": true,
}

func isTextLike(mimeType, name string) bool {
	mt := strings.ToLower(mimeType)
	if i := strings.IndexByte(mt, ';'); i >= 0 {
		mt = strings.TrimSpace(mt[:i])
	}
	if strings.HasPrefix(mt, "text/") || textLikeMimeTypes[mt] {
		return true
	}
	return textLikeExtensions[strings.ToLower(path.Ext(name))]
}

func serializeProject(r record.Project) object.Object {
	return object.Object{
		Kind:      object.KindProject,
		ObjectID:  r.ProjectKey,
		ProjectID: r.ProjectKey,
		OrgID:     r.OrgID,
		Title:     r.Name,
		Text:      r.Description,
		Status:    r.Status,
		URL:       r.URL,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

func serializeChange(r record.Change) object.Object {
	title := fmt.Sprintf("Change: %s", r.Field)
	text := fmt.Sprintf("%s changed from %q to %q", r.Field, r.OldValue, r.NewValue)
	if r.Author != "" {
		text += " by " + r.Author
	}
	return object.Object{
		Kind:           object.KindChange,
		ObjectID:       r.ChangeID,
		ProjectID:      r.ProjectID,
		OrgID:          r.OrgID,
		Title:          title,
		Text:           text,
		ParentObjectID: r.TicketID,
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.CreatedAt,
	}
}

func serializeNode(r record.Node) object.Object {
	return object.Object{
		Kind:      object.KindNode,
		ObjectID:  r.NodeID,
		ProjectID: r.ProjectID,
		OrgID:     r.OrgID,
		Title:     r.Hostname,
		Text:      r.Notes,
		Status:    r.Status,
		URL:       r.URL,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

func serializeRelease(r record.Release) object.Object {
	return object.Object{
		Kind:      object.KindRelease,
		ObjectID:  r.ReleaseID,
		ProjectID: r.ProjectID,
		OrgID:     r.OrgID,
		Title:     r.Version,
		Text:      r.Notes,
		Status:    r.Status,
		URL:       r.URL,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

// externalMirror is the locally cached state of a mirrored issue or PR,
// shared between the two external kinds.
type externalMirror struct {
	kind         object.Kind
	id           string
	projectID    string
	orgID        string
	sourceSystem string
	externalKey  string
	title        string
	body         string
	state        string
	labels       []string
	comments     []string
	url          string
	createdAt    time.Time
	updatedAt    time.Time
}

// serializeExternal builds the canonical object for a mirrored issue or PR.
// With refetch requested it asks the external tracker for the live state.
// A fetch failure falls back to the mirror: indexing must not fail on
// tracker outages.
func (s *Serializer) serializeExternal(ctx context.Context, m externalMirror, refetch bool) object.Object {
	title, body, state := m.title, m.body, m.state
	labels, comments := m.labels, m.comments
	url := m.url
	createdAt, updatedAt := m.createdAt, m.updatedAt

	if refetch && s.fetcher != nil && m.externalKey != "" {
		remote, err := s.fetcher.FetchIssue(ctx, m.externalKey)
		if err != nil {
			metrics.RefetchTotal.WithLabelValues(m.sourceSystem, "fallback").Inc()
			s.logger.Warn("external refetch failed, using local mirror",
				zap.String("external_key", m.externalKey),
				zap.Error(err),
			)
		} else {
			metrics.RefetchTotal.WithLabelValues(m.sourceSystem, "success").Inc()
			title, body, state = remote.Title, remote.Body, remote.State
			labels, comments = remote.Labels, remote.Comments
			if remote.URL != "" {
				url = remote.URL
			}
			if !remote.CreatedAt.IsZero() {
				createdAt = remote.CreatedAt
			}
			if !remote.UpdatedAt.IsZero() {
				updatedAt = remote.UpdatedAt
			}
		}
	}

	text := body
	if len(comments) > 0 {
		text = strings.TrimSpace(body + "\n\n" + strings.Join(comments, "\n\n"))
	}

	return object.Object{
		Kind:         m.kind,
		ObjectID:     m.id,
		ProjectID:    m.projectID,
		OrgID:        m.orgID,
		Title:        title,
		Text:         text,
		Status:       state,
		URL:          url,
		SourceSystem: m.sourceSystem,
		ExternalKey:  m.externalKey,
		Tags:         labels,
		CreatedAt:    createdAt,
		UpdatedAt:    updatedAt,
	}
}
