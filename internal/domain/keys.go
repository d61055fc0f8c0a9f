package domain

import "context"

type CtxKey string

const (
	KeyUserID    CtxKey = "UserID"
	KeyUserEmail CtxKey = "Email"
	KeyUserRole  CtxKey = "Role"
	KeyCompanyID CtxKey = "CompanyID"
	KeyViewer    CtxKey = "Viewer"
)

// WithViewer stores the authenticated viewer on ctx.
func WithViewer(ctx context.Context, v *Viewer) context.Context {
	return context.WithValue(ctx, KeyViewer, v)
}

// ViewerFrom returns the viewer stored by the auth middleware.
func ViewerFrom(ctx context.Context) (*Viewer, bool) {
	v, ok := ctx.Value(KeyViewer).(*Viewer)
	return v, ok && v != nil
}
