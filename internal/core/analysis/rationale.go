package analysis

import (
	"fmt"
	"strings"

	"github.com/koperasi-lestari/bichecking/internal/core/domain"
)

const AbsentFieldText = "tidak ditemukan"

const (
	maxSummaryTags = 4
	maxDetailTags  = 8
)

var recommendations = map[domain.VerdictLabel]string{
	domain.VerdictEligible:   "Rekomendasi: riwayat kredit mendukung, pengajuan dapat dilanjutkan ke tahap analisis berikutnya.",
	domain.VerdictIneligible: "Rekomendasi: riwayat kredit tidak mendukung, pengajuan sebaiknya ditolak atau diminta dokumen pendukung tambahan.",
	domain.VerdictCaution:    "Rekomendasi: hasil belum meyakinkan, perlu verifikasi manual oleh analis sebelum pengajuan diproses.",
}

// BuildRationale assembles the itemized, human-readable explanation for a
// final verdict. Absent numeric fields are rendered explicitly so a reader
// can distinguish "checked and clear" from "not checked".
func BuildRationale(sig domain.ExtractedSignals, verdict domain.VerdictLabel, match *domain.SimilarityMatch, fileSize int) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Hasil analisis BI Checking: %s\n", verdict)
	b.WriteString(summaryLine(sig, match))

	b.WriteString("Rincian pemeriksaan:\n")
	fmt.Fprintf(&b, "- Kolektibilitas: %s\n", intField(sig.Kolektibilitas))
	fmt.Fprintf(&b, "- Skor BI: %s\n", intField(sig.BIScore))
	fmt.Fprintf(&b, "- DSR: %s\n", percentField(sig.DSR))
	fmt.Fprintf(&b, "- DTI: %s\n", percentField(sig.DTI))

	if sig.Aging.Total() > 0 {
		fmt.Fprintf(&b, "Rekap ketepatan bayar: OK=%d, 1-89 hari=%d, 90-119 hari=%d, >=120 hari=%d\n",
			sig.Aging.OK, sig.Aging.Yellow, sig.Aging.Orange, sig.Aging.Red)
	}

	if len(sig.Tags) > 0 {
		fmt.Fprintf(&b, "Indikasi terdeteksi: %s\n", strings.Join(capTags(sig.Tags, maxDetailTags), ", "))
	}

	b.WriteString(recommendations[verdict])
	b.WriteString("\n")
	fmt.Fprintf(&b, "Ukuran berkas: %d byte.", fileSize)

	return b.String()
}

// NoDataRationale is the fixed explanation used when no document was
// attached at all.
func NoDataRationale() string {
	return "Belum ada data BI Checking untuk pengajuan ini.\n" +
		"Unggah dokumen BI Checking (SLIK) agar analisis otomatis dapat dijalankan.\n" +
		recommendations[domain.VerdictCaution]
}

func summaryLine(sig domain.ExtractedSignals, match *domain.SimilarityMatch) string {
	parts := make([]string, 0, 6)
	if sig.Kolektibilitas != nil {
		parts = append(parts, fmt.Sprintf("kolektibilitas %d", *sig.Kolektibilitas))
	}
	if sig.BIScore != nil {
		parts = append(parts, fmt.Sprintf("skor BI %d", *sig.BIScore))
	}
	if sig.DSR != nil {
		parts = append(parts, fmt.Sprintf("DSR %.1f%%", *sig.DSR))
	}
	if sig.DTI != nil {
		parts = append(parts, fmt.Sprintf("DTI %.1f%%", *sig.DTI))
	}
	if tags := capTags(sig.Tags, maxSummaryTags); len(tags) > 0 {
		parts = append(parts, "indikasi: "+strings.Join(tags, ", "))
	}
	if match != nil {
		parts = append(parts, fmt.Sprintf("mirip dokumen referensi %s (%.0f%%)", match.Label, match.Score*100))
	}
	if len(parts) == 0 {
		return "Ringkasan: tidak ada sinyal yang dikenali dari dokumen.\n"
	}
	return "Ringkasan: " + strings.Join(parts, "; ") + "\n"
}

func capTags(tags []string, limit int) []string {
	if len(tags) <= limit {
		return tags
	}
	return tags[:limit]
}

func intField(v *int) string {
	if v == nil {
		return AbsentFieldText
	}
	return fmt.Sprintf("%d", *v)
}

func percentField(v *float64) string {
	if v == nil {
		return AbsentFieldText
	}
	return fmt.Sprintf("%.1f%%", *v)
}
