package memory

import "exam-room-service/internal/domain"

// DefaultBanks returns the built-in UTBK-style bank served when no database is configured.
func DefaultBanks() map[string]domain.QuestionBank {
	return map[string]domain.QuestionBank{
		"utbk": {
			ID: "utbk",
			Questions: []domain.Question{
				{
					ID:      1,
					Type:    "TPS",
					Text:    "Jika 3x + 5 = 14, berapakah nilai 2x + 1?",
					Options: map[string]string{"A": "5", "B": "6", "C": "7", "D": "8", "E": "9"},
					Correct: "C",
				},
				{
					ID:      2,
					Type:    "Literasi",
					Text:    "Manakah kata yang baku di bawah ini?",
					Options: map[string]string{"A": "Apotik", "B": "Nasehat", "C": "Kualitas", "D": "Obyek", "E": "Praktek"},
					Correct: "C",
				},
				{
					ID:   3,
					Type: "Logika",
					Text: "Semua dokter adalah orang pintar. Sebagian orang pintar suka membaca. Simpulan yang tepat adalah...",
					Options: map[string]string{
						"A": "Semua dokter suka membaca",
						"B": "Sebagian dokter suka membaca",
						"C": "Semua orang pintar adalah dokter",
						"D": "Tidak dapat disimpulkan",
						"E": "Sebagian orang pintar bukan dokter",
					},
					Correct: "D",
				},
				{
					ID:      4,
					Type:    "TPS",
					Text:    "Deret angka: 2, 5, 11, 23, ... Angka berikutnya adalah?",
					Options: map[string]string{"A": "44", "B": "45", "C": "46", "D": "47", "E": "48"},
					Correct: "D",
				},
				{
					ID:   5,
					Type: "Pengetahuan Umum",
					Text: "Ibukota baru Indonesia terletak di provinsi...",
					Options: map[string]string{
						"A": "Kalimantan Barat",
						"B": "Kalimantan Tengah",
						"C": "Kalimantan Timur",
						"D": "Kalimantan Selatan",
						"E": "Kalimantan Utara",
					},
					Correct: "C",
				},
			},
		},
	}
}
