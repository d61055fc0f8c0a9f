package domain

import (
	"context"
	"math"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func ptr(v int64) *int64 { return &v }

func TestLocationSelectionClearsChildren(t *testing.T) {
	sel := LocationSelection{}.SelectCountry(ptr(1)).SelectDepartment(ptr(5)).SelectCity(ptr(50))

	same := sel.SelectCountry(ptr(1))
	assert.Equal(t, sel, same)

	other := sel.SelectCountry(ptr(2))
	assert.Equal(t, int64(2), *other.CountryID)
	assert.Nil(t, other.DepartmentID)
	assert.Nil(t, other.CityID)

	dept := sel.SelectDepartment(ptr(6))
	assert.Equal(t, int64(1), *dept.CountryID)
	assert.Equal(t, int64(6), *dept.DepartmentID)
	assert.Nil(t, dept.CityID)

	cleared := sel.SelectCountry(nil)
	assert.Equal(t, LocationSelection{}, cleared)
}

func TestOrderTransitions(t *testing.T) {
	allowed := map[OrderStatus][]OrderStatus{
		OrderCreated:    {OrderScheduled, OrderCancelled},
		OrderScheduled:  {OrderInProgress, OrderCancelled},
		OrderInProgress: {OrderCompleted, OrderCancelled},
	}
	all := []OrderStatus{OrderCreated, OrderScheduled, OrderInProgress, OrderCompleted, OrderCancelled}
	for _, from := range all {
		for _, to := range all {
			want := false
			for _, a := range allowed[from] {
				if a == to {
					want = true
				}
			}
			assert.Equal(t, want, from.CanTransitionTo(to), "%s -> %s", from, to)
		}
	}
	assert.True(t, OrderCompleted.IsTerminal())
	assert.False(t, OrderInProgress.IsTerminal())
}

func TestSolicitudTransitions(t *testing.T) {
	assert.True(t, SolicitudPending.CanTransitionTo(SolicitudInReview))
	assert.True(t, SolicitudInReview.CanTransitionTo(SolicitudPending))
	assert.True(t, SolicitudRejected.CanTransitionTo(SolicitudPending))
	assert.False(t, SolicitudPending.CanTransitionTo(SolicitudApproved))
	assert.False(t, SolicitudApproved.CanTransitionTo(SolicitudRejected))
	assert.False(t, SolicitudClosed.CanTransitionTo(SolicitudPending))
}

func TestGeneratedIdentifiers(t *testing.T) {
	number := NewOrderNumber(time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC))
	assert.Regexp(t, regexp.MustCompile(`^ORD-20240301-[0-9A-F]{6}$`), number)

	assert.Regexp(t, regexp.MustCompile(`^[0-9A-F]{10}$`), NewCertificateCode())
	assert.NotEqual(t, NewCertificateCode(), NewCertificateCode())
}

func TestPageRequest(t *testing.T) {
	p := PageRequest{}.Normalize()
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, DefaultPageSize, p.Limit)

	p = PageRequest{Page: 3, Limit: 500}.Normalize()
	assert.Equal(t, MaxPageSize, p.Limit)
	assert.Equal(t, 200, PageRequest{Page: 3, Limit: 500}.Offset())

	huge := PageRequest{Page: math.MaxInt, Limit: 50}
	assert.Equal(t, MaxPage, huge.Normalize().Page)
	assert.Equal(t, (MaxPage-1)*50, huge.Offset())

	assert.Equal(t, 0, TotalPages(0, 20))
	assert.Equal(t, 1, TotalPages(20, 20))
	assert.Equal(t, 2, TotalPages(21, 20))
}

func TestViewerScope(t *testing.T) {
	admin := &Viewer{Role: RoleAdmin, Global: true}
	scope, ok := admin.ScopedCompany(nil)
	assert.True(t, ok)
	assert.Nil(t, scope)
	assert.True(t, admin.BelongsTo(99))
	assert.True(t, admin.IsAdmin())

	user := &Viewer{Role: RoleCompanyUser, Companies: []int64{4, 7}}
	_, ok = user.ScopedCompany(ptr(4))
	assert.False(t, ok, "no company selected")

	user.CompanyID = ptr(7)
	scope, ok = user.ScopedCompany(ptr(4))
	assert.True(t, ok)
	assert.Equal(t, int64(7), *scope, "requested company is ignored")
	assert.True(t, user.BelongsTo(4))
	assert.False(t, user.BelongsTo(5))

	ctx := WithViewer(context.Background(), user)
	got, ok := ViewerFrom(ctx)
	assert.True(t, ok)
	assert.Same(t, user, got)

	_, ok = ViewerFrom(context.Background())
	assert.False(t, ok)
}
