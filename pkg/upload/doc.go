// Package upload relays token images and metadata to a content-addressed
// object store.
//
// The Relay checks its settings, fills in a name and content type, and hands
// the artifact to a Backend. The S3Backend talks to any S3-compatible API
// with path-style addressing; with Filebase, the IPFS CID of the written
// object comes back in the x-amz-meta-cid response header and the public URL
// is {gateway}/{cid}.
//
//	backend, err := upload.NewS3Backend(ctx, upload.S3ConfigFromConfig(cfg.Storage))
//	relay := upload.NewRelay(upload.SettingsFromConfig(cfg.Storage), backend)
//
//	res, err := relay.Upload(ctx, upload.Artifact{
//	    Name:        "logo.png",
//	    ContentType: "image/png",
//	    Payload:     data,
//	})
//
// Missing credentials, bucket or gateway produce a *ConfigurationError
// before any request is sent. Backend failures produce a *BackendError with
// the backend's status.
package upload
