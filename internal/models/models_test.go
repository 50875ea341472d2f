package models

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestImageRecordJSON(t *testing.T) {
	rec := NewImageRecord("pano_01", true, []float64{121.5, 31.25, 12}, TileStats{TilesWritten: 32})

	data, err := json.Marshal(rec)
	if err != nil {
		t.Fatal(err)
	}

	want := `{"imagename":"pano_01","lonlat":[121.5,31.25,12],"height":null,"longitudeoffset":null,"usetile":true}`
	if string(data) != want {
		t.Errorf("Expected:\n%s\nGot:\n%s", want, data)
	}
}

func TestImageRecordNilLonLat(t *testing.T) {
	data, err := json.Marshal(NewImageRecord("x", false, nil, TileStats{}))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"lonlat":null`) {
		t.Errorf("Expected null lonlat, got %s", data)
	}
}

func TestGroupEmptyImages(t *testing.T) {
	data, err := json.Marshal(Group{Name: "B", Images: []ImageRecord{}})
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `{"name":"B","images":[]}` {
		t.Errorf("Unexpected JSON %s", data)
	}
}
