package s3

import "testing"

func TestApplyPrefix(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		prefix string
		key    string
		want   string
	}{
		{name: "no prefix", prefix: "", key: "district/file.pdf", want: "district/file.pdf"},
		{name: "simple prefix", prefix: "curricula", key: "district/file.pdf", want: "curricula/district/file.pdf"},
		{name: "prefix trailing slash", prefix: "curricula/", key: "district/file.pdf", want: "curricula/district/file.pdf"},
		{name: "prefix and key slashes", prefix: "/curricula/", key: "/district/file.pdf", want: "curricula/district/file.pdf"},
		{name: "nested prefix", prefix: "curricula/prod", key: "district/file.pdf", want: "curricula/prod/district/file.pdf"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := applyPrefix(tt.prefix, tt.key); got != tt.want {
				t.Fatalf("applyPrefix(%q, %q) = %q, want %q", tt.prefix, tt.key, got, tt.want)
			}
		})
	}
}
