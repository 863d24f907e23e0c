package roster

import (
	"strings"
	"testing"
)

func TestRead_BasicRoster(t *testing.T) {
	csvData := "Kode PT,Nama Institusi,Sinta ID Link,Klaster\n" +
		"001002,Universitas Gadjah Mada,404,Mandiri\n" +
		"001015,UPN Veteran Yogyakarta,437,Utama\n"
	insts, err := Read(strings.NewReader(csvData))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(insts) != 2 {
		t.Fatalf("expected 2 institutions, got %d", len(insts))
	}
	if insts[0].KodePT != "001002" || insts[0].SintaID != "404" || insts[0].Klaster != "Mandiri" {
		t.Fatalf("unexpected first row: %+v", insts[0])
	}
	if insts[1].Nama != "UPN Veteran Yogyakarta" {
		t.Fatalf("unexpected second row: %+v", insts[1])
	}
}

func TestRead_ColumnOrderIndependent(t *testing.T) {
	csvData := "Sinta ID Link,Klaster,Kode PT,Nama Institusi\n" +
		"437,Utama,001015,UPN Veteran Yogyakarta\n"
	insts, err := Read(strings.NewReader(csvData))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(insts) != 1 || insts[0].KodePT != "001015" || insts[0].SintaID != "437" {
		t.Fatalf("header-driven lookup failed: %+v", insts)
	}
}

func TestRead_MissingColumn(t *testing.T) {
	csvData := "Kode PT,Nama Institusi,Klaster\n001015,UPN Veteran Yogyakarta,Utama\n"
	if _, err := Read(strings.NewReader(csvData)); err == nil {
		t.Fatalf("expected error for missing Sinta ID Link column")
	} else if !strings.Contains(err.Error(), "Sinta ID Link") {
		t.Fatalf("error should name the missing column, got %v", err)
	}
}

func TestRead_SkipsRowsWithoutSintaID(t *testing.T) {
	csvData := "Kode PT,Nama Institusi,Sinta ID Link,Klaster\n" +
		"001002,Universitas Gadjah Mada,,Mandiri\n" +
		"001015,UPN Veteran Yogyakarta,437,Utama\n"
	insts, err := Read(strings.NewReader(csvData))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(insts) != 1 || insts[0].SintaID != "437" {
		t.Fatalf("expected only the fetchable row, got %+v", insts)
	}
}

func TestRead_HandlesBOM(t *testing.T) {
	csvData := "\uFEFFKode PT,Nama Institusi,Sinta ID Link,Klaster\n" +
		"001015,UPN Veteran Yogyakarta,437,Utama\n"
	insts, err := Read(strings.NewReader(csvData))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(insts) != 1 {
		t.Fatalf("expected 1 institution, got %d", len(insts))
	}
}
