package search

import "errors"

var (
	ErrRecordOwned       = errors.New("[xsearch] record is owned by a collection")
	ErrInvalidOperand    = errors.New("[xsearch] record is not owned by the collection")
	ErrMalformedScore    = errors.New("[xsearch] malformed score")
	ErrInvalidAddress    = errors.New("[xsearch] invalid address")
	ErrUnknownSearchMode = errors.New("[xsearch] unknown search mode")
)
