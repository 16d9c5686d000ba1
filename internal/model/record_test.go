package model

import (
	"testing"
	"time"
)

func TestRecordValidate(t *testing.T) {
	valid := PackageSizeRecord{
		Name:      "moment",
		Version:   "2.30.1",
		Gzip:      20000,
		ScrapedAt: time.Now(),
	}

	tests := []struct {
		name   string
		mutate func(*PackageSizeRecord)
		ok     bool
	}{
		{"valid record", func(r *PackageSizeRecord) {}, true},
		{"latest sentinel version", func(r *PackageSizeRecord) { r.Version = Latest }, true},
		{"missing name", func(r *PackageSizeRecord) { r.Name = "" }, false},
		{"whitespace name", func(r *PackageSizeRecord) { r.Name = "   " }, false},
		{"missing version", func(r *PackageSizeRecord) { r.Version = "" }, false},
		{"metadata artifact version", func(r *PackageSizeRecord) { r.Version = "16 packages" }, false},
		{"metadata artifact singular", func(r *PackageSizeRecord) { r.Version = "1 package" }, false},
		{"zero gzip", func(r *PackageSizeRecord) { r.Gzip = 0 }, false},
		{"negative gzip", func(r *PackageSizeRecord) { r.Gzip = -1 }, false},
		{"version containing packages word", func(r *PackageSizeRecord) { r.Version = "2.0.0-packages" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := valid
			tt.mutate(&r)
			err := r.Validate()
			if tt.ok && err != nil {
				t.Errorf("expected valid, got %v", err)
			}
			if !tt.ok && err == nil {
				t.Error("expected validation error, got nil")
			}
		})
	}
}

func TestValidationErrorMessage(t *testing.T) {
	r := PackageSizeRecord{Name: "moment", Version: "16 packages", Gzip: 100}
	err := r.Validate()
	if err == nil {
		t.Fatal("expected error")
	}
	if _, ok := err.(*ValidationError); !ok {
		t.Fatalf("expected *ValidationError, got %T", err)
	}
}
