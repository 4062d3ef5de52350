package simpleupload

// IssueUploadRequest contains parameters for issuing an upload grant. All
// fields are optional; a zero value requests a grant for the deployment's
// configured content type.
type IssueUploadRequest struct {
	// ContentType, when set, must match the content type this deployment
	// signs for. This is a single-content-type uploader.
	ContentType string `json:"contentType,omitempty"`
}

// UploadGrant is the signing response returned to clients. UploadURL is a
// capability: it embeds the target bucket, object key, expiration and
// content-type constraint, and is honored by the store only for a PUT that
// matches all of them. Key is the object identifier to record after upload.
//
// The JSON field names (uploadURL, Key) are part of the wire contract.
type UploadGrant struct {
	UploadURL   string `json:"uploadURL"`
	Key         string `json:"Key"`
	Method      string `json:"method"`
	ContentType string `json:"contentType"`
	ExpiresIn   int    `json:"expiresIn"`
}
