package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lcalzada-xor/reconrisk/internal/core/domain"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("%w: %q", domain.ErrUnsupportedFramework, "HIPAA"), http.StatusBadRequest},
		{domain.ErrEmptyOrganization, http.StatusBadRequest},
		{domain.ErrReportNotFound, http.StatusNotFound},
		{fmt.Errorf("cannot approve expired report r: %w", domain.ErrInvalidTransition), http.StatusConflict},
		{fmt.Errorf("failed to fetch inventory for acme: %w", context.DeadlineExceeded), http.StatusGatewayTimeout},
		{errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, statusFor(tt.err), tt.err.Error())
	}
}

func TestSlug(t *testing.T) {
	assert.Equal(t, "acme_corp", slug(" Acme Corp "))
	assert.Equal(t, "shop_acme_com", slug("shop.acme.com"))
	assert.Equal(t, "ab", slug("a/b"))
}
