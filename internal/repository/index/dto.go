package index

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/kontur-labs/ticketsearch/internal/domain/object"
)

// docDTO is the stored JSON shape of a canonical object. Optional fields are
// omitted rather than stored as null. Search is the combined text the BM25
// field indexes; UpdatedAtUnix mirrors UpdatedAt for numeric range scans.
type docDTO struct {
	Kind          string    `json:"kind"`
	ObjectID      string    `json:"object_id"`
	ProjectID     string    `json:"project_id,omitempty"`
	Title         string    `json:"title"`
	Text          string    `json:"text"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
	UpdatedAtUnix int64     `json:"updated_at_unix"`
	OrgID         string    `json:"org_id,omitempty"`
	Status        string    `json:"status,omitempty"`
	URL           string    `json:"url,omitempty"`
	SourceSystem  string    `json:"source_system,omitempty"`
	ExternalKey   string    `json:"external_key,omitempty"`
	ParentID      string    `json:"parent_id,omitempty"`
	MimeType      string    `json:"mime_type,omitempty"`
	SizeBytes     int64     `json:"size_bytes,omitempty"`
	SHA256        string    `json:"sha256,omitempty"`
	Tags          []string  `json:"tags,omitempty"`
	Search        string    `json:"search"`
	Vector        []float32 `json:"vector,omitempty"`
}

// buildDoc converts a canonical object into its stored form.
func buildDoc(obj *object.Object, vector []float32) docDTO {
	return docDTO{
		Kind:          string(obj.Kind),
		ObjectID:      obj.ObjectID,
		ProjectID:     obj.ProjectID,
		Title:         obj.Title,
		Text:          obj.Text,
		CreatedAt:     obj.CreatedAt,
		UpdatedAt:     obj.UpdatedAt,
		UpdatedAtUnix: obj.UpdatedAt.Unix(),
		OrgID:         obj.OrgID,
		Status:        obj.Status,
		URL:           obj.URL,
		SourceSystem:  obj.SourceSystem,
		ExternalKey:   obj.ExternalKey,
		ParentID:      obj.ParentObjectID,
		MimeType:      obj.MimeType,
		SizeBytes:     obj.SizeBytes,
		SHA256:        obj.SHA256,
		Tags:          obj.Tags,
		Search:        obj.Title + "\n" + obj.Text,
		Vector:        vector,
	}
}

// parseDoc decodes a stored document. JSON.GET on the root path returns an
// array-wrapped document; FT.SEARCH RETURN returns the bare object. Both
// forms are accepted.
func parseDoc(raw []byte) (docDTO, error) {
	var dto docDTO
	if err := json.Unmarshal(raw, &dto); err == nil && dto.Kind != "" {
		return dto, nil
	}

	var wrapped []docDTO
	if err := json.Unmarshal(raw, &wrapped); err != nil {
		return docDTO{}, fmt.Errorf("unmarshal document: %w", err)
	}
	if len(wrapped) == 0 {
		return docDTO{}, fmt.Errorf("empty document")
	}
	return wrapped[0], nil
}

// toObject converts a stored document back into a canonical object.
func (d docDTO) toObject() object.Object {
	return object.Object{
		Kind:           object.Kind(d.Kind),
		ObjectID:       d.ObjectID,
		ProjectID:      d.ProjectID,
		Title:          d.Title,
		Text:           d.Text,
		CreatedAt:      d.CreatedAt,
		UpdatedAt:      d.UpdatedAt,
		OrgID:          d.OrgID,
		Status:         d.Status,
		URL:            d.URL,
		SourceSystem:   d.SourceSystem,
		ExternalKey:    d.ExternalKey,
		ParentObjectID: d.ParentID,
		MimeType:       d.MimeType,
		SizeBytes:      d.SizeBytes,
		SHA256:         d.SHA256,
		Tags:           d.Tags,
	}
}
