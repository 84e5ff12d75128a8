// Package api exposes the ingestion service over HTTP.
//
// The surface is deliberately small: multipart upload, per-file processing
// status, project listings, and delete. Processing itself is asynchronous;
// the upload response returns as soon as the raw bytes are stored and the
// first stage is queued, and clients poll the status endpoint.
package api
