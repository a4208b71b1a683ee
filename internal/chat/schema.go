package chat

import "google.golang.org/genai"

// outputSchema constrains every reply to the structured narrative output:
// a conversational analysis, one or more ready-to-publish narrative variants,
// and a (possibly empty) list of missing-information prompts.
var outputSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"analysis": {
			Type:        genai.TypeString,
			Description: "Analisis singkat tentang perubahan yang diminta pengguna dan bagaimana perubahan itu diterapkan pada narasi. Ini akan menjadi balasan percakapan.",
		},
		"narratives": {
			Type:        genai.TypeArray,
			Description: "Satu atau lebih variasi narasi yang siap pakai (biasanya 2-3 variasi). Setiap narasi harus memiliki judul dan konten.",
			Items: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"title": {
						Type:        genai.TypeString,
						Description: `Judul yang menarik dan deskriptif untuk narasi. Contoh: "Variasi 1: Lebih Formal", "Variasi 2: Antusias & Ceria".`,
					},
					"content": {
						Type:        genai.TypeString,
						Description: `Isi narasi lengkap yang dibuat sesuai panduan komunikasi YPBB. Harus selalu dimulai dengan sapaan "Sobat Organis" dan mengganti kata ganti orang kedua dengan "Sobat".`,
					},
				},
				Required: []string{"title", "content"},
			},
		},
		"dataNeeded": {
			Type:        genai.TypeArray,
			Description: "Daftar poin-poin informasi yang hilang atau tidak jelas dari input pengguna, yang jika ada akan membuat narasi lebih baik. Jika semua informasi sudah cukup, kembalikan array kosong.",
			Items:       &genai.Schema{Type: genai.TypeString},
		},
	},
	Required: []string{"analysis", "narratives", "dataNeeded"},
}
