package models

// CreateDataRequest is the body of the create route: a metadata descriptor
// plus the initial rows of the dataset.
type CreateDataRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Source      string `json:"source"`
	Tags        string `json:"tags"`
	Data        []Row  `json:"data"`
}

// UpdateMetadataRequest is the body of the metadata_update route. Upload user
// and creation/update times can not be updated through it.
type UpdateMetadataRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Source      *string `json:"source"`
	Tags        *string `json:"tags"`
}

// Fields returns only the descriptor fields the caller actually supplied.
func (r *UpdateMetadataRequest) Fields() map[string]any {
	fields := make(map[string]any)
	if r.Title != nil {
		fields["title"] = *r.Title
	}
	if r.Description != nil {
		fields["description"] = *r.Description
	}
	if r.Source != nil {
		fields["source"] = *r.Source
	}
	if r.Tags != nil {
		fields["tags"] = *r.Tags
	}
	return fields
}

// AuthScope is the opaque authorization requirement attached to a route
// setting. It is passed through to the identity layer, which currently only
// understands the superuser key.
type AuthScope map[string]any

// Superuser reports whether the scope requires an elevated user.
func (s AuthScope) Superuser() bool {
	v, ok := s["superuser"]
	if !ok {
		return false
	}
	b, ok := v.(bool)
	return ok && b
}

// Merge returns a copy of s with the override keys applied on top. Keys not
// mentioned in the override persist.
func (s AuthScope) Merge(override AuthScope) AuthScope {
	if len(override) == 0 && s == nil {
		return nil
	}
	merged := make(AuthScope, len(s)+len(override))
	for k, v := range s {
		merged[k] = v
	}
	for k, v := range override {
		merged[k] = v
	}
	return merged
}
