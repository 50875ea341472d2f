// Package geotagtest builds JPEG and TIFF fixtures carrying GPS EXIF tags.
package geotagtest

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/jpeg"
	"os"
)

// Rational is an unsigned TIFF RATIONAL
type Rational struct {
	Num uint32
	Den uint32
}

// DMS returns whole degrees, minutes and seconds as three rationals
func DMS(d, m, s uint32) []Rational {
	return []Rational{{d, 1}, {m, 1}, {s, 1}}
}

// GPS lists the tags to write. Nil slices and empty refs are left out.
type GPS struct {
	LatitudeRef  string
	Latitude     []Rational
	LongitudeRef string
	Longitude    []Rational
	AltitudeRef  *byte
	Altitude     []Rational
}

const (
	typeByte     = 1
	typeASCII    = 2
	typeLong     = 4
	typeRational = 5

	tagGPSPointer = 0x8825
)

type entry struct {
	tag   uint16
	typ   uint16
	count uint32
	data  []byte
}

func rationalEntry(tag uint16, vals []Rational) entry {
	data := make([]byte, 0, 8*len(vals))
	for _, v := range vals {
		data = binary.LittleEndian.AppendUint32(data, v.Num)
		data = binary.LittleEndian.AppendUint32(data, v.Den)
	}
	return entry{tag: tag, typ: typeRational, count: uint32(len(vals)), data: data}
}

func asciiEntry(tag uint16, s string) entry {
	data := append([]byte(s), 0)
	return entry{tag: tag, typ: typeASCII, count: uint32(len(data)), data: data}
}

func (g GPS) entries() []entry {
	var es []entry
	if g.LatitudeRef != "" {
		es = append(es, asciiEntry(0x0001, g.LatitudeRef))
	}
	if g.Latitude != nil {
		es = append(es, rationalEntry(0x0002, g.Latitude))
	}
	if g.LongitudeRef != "" {
		es = append(es, asciiEntry(0x0003, g.LongitudeRef))
	}
	if g.Longitude != nil {
		es = append(es, rationalEntry(0x0004, g.Longitude))
	}
	if g.AltitudeRef != nil {
		es = append(es, entry{tag: 0x0005, typ: typeByte, count: 1, data: []byte{*g.AltitudeRef}})
	}
	if g.Altitude != nil {
		es = append(es, rationalEntry(0x0006, g.Altitude))
	}
	return es
}

// TIFF returns a little-endian TIFF stream with IFD0 pointing at a GPS IFD
func TIFF(g GPS) []byte {
	le := binary.LittleEndian
	es := g.entries()

	const ifd0Offset = 8
	const ifd0Size = 2 + 12 + 4
	gpsOffset := uint32(ifd0Offset + ifd0Size)
	dataOffset := gpsOffset + 2 + 12*uint32(len(es)) + 4

	buf := []byte("II")
	buf = le.AppendUint16(buf, 42)
	buf = le.AppendUint32(buf, ifd0Offset)

	// IFD0: a single GPS pointer
	buf = le.AppendUint16(buf, 1)
	buf = le.AppendUint16(buf, tagGPSPointer)
	buf = le.AppendUint16(buf, typeLong)
	buf = le.AppendUint32(buf, 1)
	buf = le.AppendUint32(buf, gpsOffset)
	buf = le.AppendUint32(buf, 0)

	var data []byte
	buf = le.AppendUint16(buf, uint16(len(es)))
	for _, e := range es {
		buf = le.AppendUint16(buf, e.tag)
		buf = le.AppendUint16(buf, e.typ)
		buf = le.AppendUint32(buf, e.count)
		if len(e.data) <= 4 {
			inline := make([]byte, 4)
			copy(inline, e.data)
			buf = append(buf, inline...)
			continue
		}
		buf = le.AppendUint32(buf, dataOffset+uint32(len(data)))
		data = append(data, e.data...)
		if len(data)%2 == 1 {
			data = append(data, 0)
		}
	}
	buf = le.AppendUint32(buf, 0)

	return append(buf, data...)
}

// JPEG encodes img and splices an APP1 Exif segment holding g right after SOI.
// A nil g produces a JPEG with no EXIF at all.
func JPEG(img image.Image, g *GPS) ([]byte, error) {
	var enc bytes.Buffer
	if err := jpeg.Encode(&enc, img, &jpeg.Options{Quality: 90}); err != nil {
		return nil, err
	}
	raw := enc.Bytes()
	if g == nil {
		return raw, nil
	}

	payload := append([]byte("Exif\x00\x00"), TIFF(*g)...)

	out := make([]byte, 0, len(raw)+len(payload)+4)
	out = append(out, raw[:2]...)
	out = append(out, 0xFF, 0xE1)
	out = binary.BigEndian.AppendUint16(out, uint16(len(payload)+2))
	out = append(out, payload...)
	out = append(out, raw[2:]...)
	return out, nil
}

// WriteJPEG writes JPEG(img, g) to path
func WriteJPEG(path string, img image.Image, g *GPS) error {
	data, err := JPEG(img, g)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
