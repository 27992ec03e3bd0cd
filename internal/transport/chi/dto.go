package chi

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/kontur-labs/ticketsearch/internal/domain/object"
	"github.com/kontur-labs/ticketsearch/internal/domain/record"
	"github.com/kontur-labs/ticketsearch/internal/domain/search/hit"
	"github.com/kontur-labs/ticketsearch/internal/usecase/health"
	"github.com/kontur-labs/ticketsearch/internal/usecase/sync"
)

// API error codes.
const (
	codeBadRequest         = "bad_request"
	codeValidationFailed   = "validation_failed"
	codeNotFound           = "not_found"
	codeServiceDisabled    = "service_disabled"
	codeNotConfigured      = "service_not_configured"
	codeEmbeddingProvider  = "embedding_provider_error"
	codeVectorsUnsupported = "vector_search_not_supported"
	codeInternalError      = "internal_error"
)

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// publishRequest is the kind-discriminated index request. Record carries
// the payload matching Kind.
type publishRequest struct {
	Kind    string          `json:"kind"`
	Refetch bool            `json:"refetch,omitempty"`
	Record  json.RawMessage `json:"record"`
}

type ticketPayload struct {
	TicketID    string    `json:"ticket_id"`
	ProjectID   string    `json:"project_id"`
	OrgID       string    `json:"org_id,omitempty"`
	TicketKind  string    `json:"ticket_kind,omitempty"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Status      string    `json:"status,omitempty"`
	URL         string    `json:"url,omitempty"`
	Labels      []string  `json:"labels,omitempty"`
	CreatedAt   time.Time `json:"created_at,omitempty"`
	UpdatedAt   time.Time `json:"updated_at,omitempty"`
}

type commentPayload struct {
	CommentID string    `json:"comment_id"`
	TicketID  string    `json:"ticket_id"`
	ProjectID string    `json:"project_id"`
	OrgID     string    `json:"org_id,omitempty"`
	Author    string    `json:"author,omitempty"`
	Body      string    `json:"body"`
	URL       string    `json:"url,omitempty"`
	CreatedAt time.Time `json:"created_at,omitempty"`
	UpdatedAt time.Time `json:"updated_at,omitempty"`
}

type attachmentPayload struct {
	AttachmentID string    `json:"attachment_id"`
	TicketID     string    `json:"ticket_id"`
	ProjectID    string    `json:"project_id"`
	OrgID        string    `json:"org_id,omitempty"`
	Name         string    `json:"name"`
	MimeType     string    `json:"mime_type,omitempty"`
	SizeBytes    int64     `json:"size_bytes,omitempty"`
	SHA256       string    `json:"sha256,omitempty"`
	Role         string    `json:"role,omitempty"`
	TicketKind   string    `json:"ticket_kind,omitempty"`
	Content      []byte    `json:"content,omitempty"`
	URL          string    `json:"url,omitempty"`
	CreatedAt    time.Time `json:"created_at,omitempty"`
	UpdatedAt    time.Time `json:"updated_at,omitempty"`
}

type projectPayload struct {
	ProjectKey  string    `json:"project_key"`
	OrgID       string    `json:"org_id,omitempty"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Status      string    `json:"status,omitempty"`
	URL         string    `json:"url,omitempty"`
	CreatedAt   time.Time `json:"created_at,omitempty"`
	UpdatedAt   time.Time `json:"updated_at,omitempty"`
}

type changePayload struct {
	ChangeID  string    `json:"change_id"`
	TicketID  string    `json:"ticket_id"`
	ProjectID string    `json:"project_id"`
	OrgID     string    `json:"org_id,omitempty"`
	Field     string    `json:"field"`
	OldValue  string    `json:"old_value,omitempty"`
	NewValue  string    `json:"new_value,omitempty"`
	Author    string    `json:"author,omitempty"`
	CreatedAt time.Time `json:"created_at,omitempty"`
}

type nodePayload struct {
	NodeID    string    `json:"node_id"`
	ProjectID string    `json:"project_id"`
	OrgID     string    `json:"org_id,omitempty"`
	Hostname  string    `json:"hostname"`
	Notes     string    `json:"notes,omitempty"`
	Status    string    `json:"status,omitempty"`
	URL       string    `json:"url,omitempty"`
	CreatedAt time.Time `json:"created_at,omitempty"`
	UpdatedAt time.Time `json:"updated_at,omitempty"`
}

type releasePayload struct {
	ReleaseID string    `json:"release_id"`
	ProjectID string    `json:"project_id"`
	OrgID     string    `json:"org_id,omitempty"`
	Version   string    `json:"version"`
	Notes     string    `json:"notes,omitempty"`
	Status    string    `json:"status,omitempty"`
	URL       string    `json:"url,omitempty"`
	CreatedAt time.Time `json:"created_at,omitempty"`
	UpdatedAt time.Time `json:"updated_at,omitempty"`
}

type externalPayload struct {
	ID           string    `json:"id"`
	ProjectID    string    `json:"project_id"`
	OrgID        string    `json:"org_id,omitempty"`
	SourceSystem string    `json:"source_system"`
	ExternalKey  string    `json:"external_key"`
	Title        string    `json:"title,omitempty"`
	Body         string    `json:"body,omitempty"`
	State        string    `json:"state,omitempty"`
	Labels       []string  `json:"labels,omitempty"`
	Comments     []string  `json:"comments,omitempty"`
	URL          string    `json:"url,omitempty"`
	CreatedAt    time.Time `json:"created_at,omitempty"`
	UpdatedAt    time.Time `json:"updated_at,omitempty"`
}

// recordFromRequest decodes the payload for the declared kind.
func recordFromRequest(req publishRequest) (record.Record, error) {
	if len(req.Record) == 0 {
		return nil, fmt.Errorf("record payload is required")
	}

	switch object.Kind(req.Kind) {
	case object.KindTicket:
		var p ticketPayload
		if err := json.Unmarshal(req.Record, &p); err != nil {
			return nil, fmt.Errorf("parse ticket: %w", err)
		}
		return record.Ticket{
			TicketID: p.TicketID, ProjectID: p.ProjectID, OrgID: p.OrgID,
			TicketKind: p.TicketKind, Title: p.Title, Description: p.Description,
			Status: p.Status, URL: p.URL, Labels: p.Labels,
			CreatedAt: p.CreatedAt, UpdatedAt: p.UpdatedAt,
		}, nil

	case object.KindComment:
		var p commentPayload
		if err := json.Unmarshal(req.Record, &p); err != nil {
			return nil, fmt.Errorf("parse comment: %w", err)
		}
		return record.Comment{
			CommentID: p.CommentID, TicketID: p.TicketID, ProjectID: p.ProjectID,
			OrgID: p.OrgID, Author: p.Author, Body: p.Body, URL: p.URL,
			CreatedAt: p.CreatedAt, UpdatedAt: p.UpdatedAt,
		}, nil

	case object.KindAttachment:
		var p attachmentPayload
		if err := json.Unmarshal(req.Record, &p); err != nil {
			return nil, fmt.Errorf("parse attachment: %w", err)
		}
		return record.Attachment{
			AttachmentID: p.AttachmentID, TicketID: p.TicketID, ProjectID: p.ProjectID,
			OrgID: p.OrgID, Name: p.Name, MimeType: p.MimeType, SizeBytes: p.SizeBytes,
			SHA256: p.SHA256, Role: p.Role, TicketKind: p.TicketKind,
			Content: p.Content, URL: p.URL,
			CreatedAt: p.CreatedAt, UpdatedAt: p.UpdatedAt,
		}, nil

	case object.KindProject:
		var p projectPayload
		if err := json.Unmarshal(req.Record, &p); err != nil {
			return nil, fmt.Errorf("parse project: %w", err)
		}
		return record.Project{
			ProjectKey: p.ProjectKey, OrgID: p.OrgID, Name: p.Name,
			Description: p.Description, Status: p.Status, URL: p.URL,
			CreatedAt: p.CreatedAt, UpdatedAt: p.UpdatedAt,
		}, nil

	case object.KindChange:
		var p changePayload
		if err := json.Unmarshal(req.Record, &p); err != nil {
			return nil, fmt.Errorf("parse change: %w", err)
		}
		return record.Change{
			ChangeID: p.ChangeID, TicketID: p.TicketID, ProjectID: p.ProjectID,
			OrgID: p.OrgID, Field: p.Field, OldValue: p.OldValue,
			NewValue: p.NewValue, Author: p.Author, CreatedAt: p.CreatedAt,
		}, nil

	case object.KindNode:
		var p nodePayload
		if err := json.Unmarshal(req.Record, &p); err != nil {
			return nil, fmt.Errorf("parse node: %w", err)
		}
		return record.Node{
			NodeID: p.NodeID, ProjectID: p.ProjectID, OrgID: p.OrgID,
			Hostname: p.Hostname, Notes: p.Notes, Status: p.Status, URL: p.URL,
			CreatedAt: p.CreatedAt, UpdatedAt: p.UpdatedAt,
		}, nil

	case object.KindRelease:
		var p releasePayload
		if err := json.Unmarshal(req.Record, &p); err != nil {
			return nil, fmt.Errorf("parse release: %w", err)
		}
		return record.Release{
			ReleaseID: p.ReleaseID, ProjectID: p.ProjectID, OrgID: p.OrgID,
			Version: p.Version, Notes: p.Notes, Status: p.Status, URL: p.URL,
			CreatedAt: p.CreatedAt, UpdatedAt: p.UpdatedAt,
		}, nil

	case object.KindExternalIssue:
		var p externalPayload
		if err := json.Unmarshal(req.Record, &p); err != nil {
			return nil, fmt.Errorf("parse external issue: %w", err)
		}
		return record.ExternalIssue{
			IssueID: p.ID, ProjectID: p.ProjectID, OrgID: p.OrgID,
			SourceSystem: p.SourceSystem, ExternalKey: p.ExternalKey,
			Title: p.Title, Body: p.Body, State: p.State, Labels: p.Labels,
			Comments: p.Comments, URL: p.URL,
			CreatedAt: p.CreatedAt, UpdatedAt: p.UpdatedAt,
		}, nil

	case object.KindExternalPR:
		var p externalPayload
		if err := json.Unmarshal(req.Record, &p); err != nil {
			return nil, fmt.Errorf("parse external pr: %w", err)
		}
		return record.ExternalPR{
			PRID: p.ID, ProjectID: p.ProjectID, OrgID: p.OrgID,
			SourceSystem: p.SourceSystem, ExternalKey: p.ExternalKey,
			Title: p.Title, Body: p.Body, State: p.State, Labels: p.Labels,
			Comments: p.Comments, URL: p.URL,
			CreatedAt: p.CreatedAt, UpdatedAt: p.UpdatedAt,
		}, nil

	default:
		return nil, fmt.Errorf("unknown record kind %q", req.Kind)
	}
}

type publishResponse struct {
	Outcome string `json:"outcome"`
	Reason  string `json:"reason,omitempty"`
	StoreID string `json:"store_id,omitempty"`
}

type searchRequest struct {
	ProjectID string            `json:"project_id"`
	Query     string            `json:"query"`
	Mode      string            `json:"mode,omitempty"`
	Filters   map[string]string `json:"filters,omitempty"`
	Limit     int               `json:"limit,omitempty"`
	Alpha     *float64          `json:"alpha,omitempty"`
}

type searchHitResponse struct {
	Kind        string     `json:"kind"`
	ObjectID    string     `json:"object_id"`
	ProjectID   string     `json:"project_id"`
	Title       string     `json:"title,omitempty"`
	URL         string     `json:"url,omitempty"`
	Status      string     `json:"status,omitempty"`
	ExternalKey string     `json:"external_key,omitempty"`
	Score       float64    `json:"score"`
	UpdatedAt   *time.Time `json:"updated_at,omitempty"`
}

type searchResponse struct {
	Hits  []searchHitResponse `json:"hits"`
	Total int                 `json:"total"`
}

func searchResponseFrom(hits []hit.Hit) searchResponse {
	items := make([]searchHitResponse, len(hits))
	for i, h := range hits {
		items[i] = searchHitResponse{
			Kind:        h.Kind,
			ObjectID:    h.ObjectID,
			ProjectID:   h.ProjectID,
			Title:       h.Title,
			URL:         h.URL,
			Status:      h.Status,
			ExternalKey: h.ExternalKey,
			Score:       h.Score,
		}
		if !h.UpdatedAt.IsZero() {
			ts := h.UpdatedAt
			items[i].UpdatedAt = &ts
		}
	}
	return searchResponse{Hits: items, Total: len(items)}
}

type objectResponse struct {
	Kind        string    `json:"kind"`
	ObjectID    string    `json:"object_id"`
	ProjectID   string    `json:"project_id"`
	Title       string    `json:"title,omitempty"`
	Text        string    `json:"text,omitempty"`
	Status      string    `json:"status,omitempty"`
	URL         string    `json:"url,omitempty"`
	ExternalKey string    `json:"external_key,omitempty"`
	Tags        []string  `json:"tags,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func objectResponseFrom(obj object.Object) objectResponse {
	return objectResponse{
		Kind:        string(obj.Kind),
		ObjectID:    obj.ObjectID,
		ProjectID:   obj.ProjectID,
		Title:       obj.Title,
		Text:        obj.Text,
		Status:      obj.Status,
		URL:         obj.URL,
		ExternalKey: obj.ExternalKey,
		Tags:        obj.Tags,
		CreatedAt:   obj.CreatedAt,
		UpdatedAt:   obj.UpdatedAt,
	}
}

type syncRequest struct {
	Refetch bool `json:"refetch,omitempty"`
}

type syncFailureResponse struct {
	Kind     string `json:"kind"`
	RecordID string `json:"record_id"`
	Error    string `json:"error"`
}

type syncResponse struct {
	ProjectID string                `json:"project_id"`
	Indexed   map[string]int        `json:"indexed"`
	Skipped   map[string]int        `json:"skipped"`
	Failures  []syncFailureResponse `json:"failures,omitempty"`
}

func syncResponseFrom(report sync.Report) syncResponse {
	resp := syncResponse{
		ProjectID: report.ProjectID,
		Indexed:   make(map[string]int, len(report.Indexed)),
		Skipped:   make(map[string]int, len(report.Skipped)),
	}
	for k, n := range report.Indexed {
		resp.Indexed[string(k)] = n
	}
	for k, n := range report.Skipped {
		resp.Skipped[string(k)] = n
	}
	for _, f := range report.Failures {
		resp.Failures = append(resp.Failures, syncFailureResponse{
			Kind:     string(f.Kind),
			RecordID: f.RecordID,
			Error:    f.Err,
		})
	}
	return resp
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

func healthResponseFrom(report health.Report) healthResponse {
	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}
	return healthResponse{Status: string(report.Status), Checks: checks}
}
