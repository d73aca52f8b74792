package service

import "testing"

func TestExtractHSCode(t *testing.T) {
	cases := []struct {
		message string
		want    string
	}{
		{"관세율 8471.30 문의", "8471.30"},
		{"HSCode 847130 조회", "847130"},
		{"품목번호 8471301000 관련", "8471301000"},
		{"코드 없음", "N/A"},
		{"", "N/A"},
		{"8471.30 그리고 850440", "8471.30"},
		{"전화번호 010-1234-5678 입니다", "N/A"},
	}
	for _, tc := range cases {
		if got := extractHSCode(tc.message); got != tc.want {
			t.Errorf("extractHSCode(%q) = %q, want %q", tc.message, got, tc.want)
		}
	}
}
