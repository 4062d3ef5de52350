// Package simpleupload issues time-limited presigned upload URLs for an
// object store, so clients can PUT file bytes directly to storage without
// routing the payload through the issuing service.
//
// The service itself is stateless: each call to IssueUploadURL generates a
// fresh object key, asks the configured store to sign a PUT capability for
// exactly that key, content type and expiration window, and returns the URL
// and key to the caller. Nothing is written and nothing is recorded; the
// store alone enforces the constraints embedded in the URL.
//
// Basic usage:
//
//	store, _ := s3.New(s3.Config{Bucket: "uploads", Region: "us-east-1"})
//	svc, _ := simpleupload.New(
//	    simpleupload.WithStore("s3", store),
//	    simpleupload.WithContentType("image/jpeg"),
//	    simpleupload.WithExpiry(5*time.Minute),
//	)
//	grant, err := svc.IssueUploadURL(ctx, simpleupload.IssueUploadRequest{})
//	// grant.UploadURL is valid for a single PUT of image/jpeg bytes
//	// for the next five minutes; grant.Key identifies the object.
//
// Storage backends live under storage/ (s3, fs, memory). The fs and memory
// backends sign URLs with the HMAC scheme from the presigned package, which
// mimics S3 presigned URL semantics for self-hosted deployments and tests.
package simpleupload
