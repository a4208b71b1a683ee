package prompt

import (
	"fmt"
	"strings"

	"narasi-web/internal/narrative"
)

// formField describes one input field of a goal form.
type formField struct {
	Name     string
	Label    string
	Optional bool
}

// formSpec is the field list and composition template for one goal.
type formSpec struct {
	Fields  []formField
	Compose func(f map[string]string) string
}

// formSpecs mirrors the goal forms of the web UI: which fields each goal
// collects and how they are concatenated into the free-text instruction.
var formSpecs = map[narrative.Goal]formSpec{
	narrative.GoalEvent: {
		Fields: []formField{
			{Name: "eventName", Label: "Nama Acara"},
			{Name: "dateTime", Label: "Tanggal & Waktu"},
			{Name: "location", Label: "Lokasi / Platform"},
			{Name: "registrationLink", Label: "Link Pendaftaran / Kontak"},
			{Name: "description", Label: "Deskripsi Singkat"},
		},
		Compose: func(f map[string]string) string {
			var sb strings.Builder
			sb.WriteString("Buat narasi pengumuman acara dengan detail berikut:\n")
			fmt.Fprintf(&sb, "- Nama Acara: %s\n", f["eventName"])
			fmt.Fprintf(&sb, "- Waktu: %s\n", f["dateTime"])
			fmt.Fprintf(&sb, "- Lokasi: %s\n", f["location"])
			fmt.Fprintf(&sb, "- Pendaftaran: %s\n", f["registrationLink"])
			fmt.Fprintf(&sb, "- Deskripsi: %s\n", f["description"])
			sb.WriteString("Pastikan ada ajakan untuk mendaftar atau hadir.")
			return sb.String()
		},
	},
	narrative.GoalLink: {
		Fields: []formField{
			{Name: "url", Label: "URL / Tautan"},
			{Name: "summary", Label: "Ringkasan / Poin Menarik"},
			{Name: "source", Label: "Sumber"},
		},
		Compose: func(f map[string]string) string {
			var sb strings.Builder
			sb.WriteString("Buat narasi untuk berbagi tautan dengan detail berikut:\n")
			fmt.Fprintf(&sb, "- URL: %s\n", f["url"])
			fmt.Fprintf(&sb, "- Ringkasan/Poin Menarik: %s\n", f["summary"])
			fmt.Fprintf(&sb, "- Sumber: %s\n", f["source"])
			sb.WriteString("Tujuannya adalah untuk mendorong relawan membaca atau melihat konten di tautan tersebut.")
			return sb.String()
		},
	},
	narrative.GoalVolunteer: {
		Fields: []formField{
			{Name: "activityName", Label: "Nama Kegiatan"},
			{Name: "deadline", Label: "Deadline Pendaftaran"},
			{Name: "rolesNeeded", Label: "Peran Relawan yang Dibutuhkan"},
			{Name: "criteria", Label: "Kriteria Utama Relawan"},
			{Name: "registrationLink", Label: "Link Pendaftaran / Narahubung"},
			{Name: "description", Label: "Deskripsi Tambahan", Optional: true},
		},
		Compose: func(f map[string]string) string {
			var sb strings.Builder
			sb.WriteString("Buat narasi panggilan relawan untuk kegiatan berikut:\n")
			fmt.Fprintf(&sb, "- Nama Kegiatan: %s\n", f["activityName"])
			fmt.Fprintf(&sb, "- Deadline Pendaftaran: %s\n", f["deadline"])
			fmt.Fprintf(&sb, "- Peran yang Dibutuhkan: %s\n", f["rolesNeeded"])
			fmt.Fprintf(&sb, "- Kriteria Utama: %s\n", f["criteria"])
			fmt.Fprintf(&sb, "- Info Pendaftaran: %s\n", f["registrationLink"])
			fmt.Fprintf(&sb, "- Deskripsi Tambahan: %s\n", f["description"])
			sb.WriteString("Fokus pada ajakan untuk berkontribusi dan menjadi bagian dari perubahan. Pastikan deadline pendaftaran disebutkan dengan jelas untuk menciptakan urgensi.")
			return sb.String()
		},
	},
	narrative.GoalGeneral: {
		Fields: []formField{
			{Name: "context", Label: "Konteks / Sumber Informasi"},
			{Name: "goal", Label: "Tujuan Narasi"},
		},
		Compose: func(f map[string]string) string {
			var sb strings.Builder
			sb.WriteString("Buat narasi umum berdasarkan informasi berikut:\n")
			fmt.Fprintf(&sb, "- Konteks/Sumber: %s\n", f["context"])
			fmt.Fprintf(&sb, "- Tujuan Narasi: %s\n", f["goal"])
			sb.WriteString("Pastikan narasi yang dihasilkan sesuai dengan tujuan yang ditetapkan.")
			return sb.String()
		},
	},
}

// ComposeFormInput concatenates the goal form fields into the free-text
// instruction the UI would otherwise compose. Required fields must be
// non-blank; unknown field names are rejected.
func ComposeFormInput(goal narrative.Goal, fields map[string]string) (string, error) {
	spec, ok := formSpecs[goal]
	if !ok {
		return "", fmt.Errorf("unknown narrative goal %q", goal)
	}

	known := make(map[string]bool, len(spec.Fields))
	for _, f := range spec.Fields {
		known[f.Name] = true
		if !f.Optional && strings.TrimSpace(fields[f.Name]) == "" {
			return "", fmt.Errorf("field %q (%s) is required", f.Name, f.Label)
		}
	}
	for name := range fields {
		if !known[name] {
			return "", fmt.Errorf("unknown field %q for goal %q", name, goal)
		}
	}

	return spec.Compose(fields), nil
}
