package httpadapter

import (
	"net/http"

	"github.com/koperasi-lestari/bichecking/internal/core/domain"
)

func mapErrorToHTTPStatus(err error) int {
	switch {
	case domain.IsKind(err, domain.ErrEmptyDocument):
		return http.StatusBadRequest
	case domain.IsKind(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case domain.IsKind(err, domain.ErrTemporary):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// clientErrorMessage keeps server-side details out of 4xx/5xx payloads.
func clientErrorMessage(err error) string {
	switch {
	case domain.IsKind(err, domain.ErrEmptyDocument):
		return "file BI Checking kosong/tidak terbaca"
	case domain.IsKind(err, domain.ErrInvalidInput):
		return "permintaan tidak valid"
	case domain.IsKind(err, domain.ErrTemporary):
		return "layanan sedang tidak tersedia, coba lagi"
	default:
		return "terjadi kesalahan pada server"
	}
}
