package domain

import "errors"

var (
	ErrRosterFetch       = errors.New("roster fetch failed")
	ErrCommentFetch      = errors.New("comment fetch failed")
	ErrUnknownKind       = errors.New("unknown proposal kind")
	ErrUnknownRole       = errors.New("unknown role")
	ErrIngestUnsupported = errors.New("platform does not support ingestion")
	ErrCommentNotFound   = errors.New("comment not found")
)
