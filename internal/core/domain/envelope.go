package domain

// Response codes carried in the envelope code field.
const (
	CodeSuccess       = 0
	CodeParamError    = 1001
	CodeNotFound      = 1002
	CodeUnauthorized  = 2001
	CodeTokenExpired  = 2002
	CodeForbidden     = 2003
	CodeInternalError = 5000
)

// Envelope is the uniform {code, message, data} wrapper around every backend reply.
type Envelope[T any] struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    T      `json:"data"`
}

// OK reports whether the envelope denotes success.
func (e *Envelope[T]) OK() bool {
	return e != nil && e.Code == CodeSuccess
}

// PageData is the paged list payload shared by the list endpoints.
type PageData[T any] struct {
	List     []T   `json:"list"`
	Total    int64 `json:"total"`
	Page     int   `json:"page"`
	PageSize int   `json:"page_size"`
}
