package jsonwire

import (
	"testing"
)

// writeSampleDoc builds a representative small document: a few common field
// names, mixed scalar widths, one nested array.
func writeSampleDoc(w Writer) error {
	if err := w.WriteObjectStart(); err != nil {
		return err
	}
	if err := w.WriteFieldName("id"); err != nil {
		return err
	}
	if err := w.WriteStringValue("doc-000123"); err != nil {
		return err
	}
	if err := w.WriteFieldName("count"); err != nil {
		return err
	}
	if err := w.WriteInt32Value(42); err != nil {
		return err
	}
	if err := w.WriteFieldName("score"); err != nil {
		return err
	}
	if err := w.WriteFloat64Value(0.9375); err != nil {
		return err
	}
	if err := w.WriteFieldName("items"); err != nil {
		return err
	}
	if err := w.WriteArrayStart(); err != nil {
		return err
	}
	for i := int64(0); i < 8; i++ {
		if err := w.WriteInt64Value(i); err != nil {
			return err
		}
	}
	if err := w.WriteArrayEnd(); err != nil {
		return err
	}
	return w.WriteObjectEnd()
}

func BenchmarkTextWriter(b *testing.B) {
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		w := NewTextWriter(WithCapacity(256))
		if err := writeSampleDoc(w); err != nil {
			b.Fatal(err)
		}
		if _, err := w.GetResult(); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkTextWriterUnchecked(b *testing.B) {
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		w := NewTextWriter(WithCapacity(256), WithUncheckedStrings())
		if err := writeSampleDoc(w); err != nil {
			b.Fatal(err)
		}
		if _, err := w.GetResult(); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkBinaryWriter(b *testing.B) {
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		w := NewBinaryWriter(WithCapacity(256))
		if err := writeSampleDoc(w); err != nil {
			b.Fatal(err)
		}
		if _, err := w.GetResult(); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkBinaryToTextConversion(b *testing.B) {
	src := NewBinaryWriter()
	if err := writeSampleDoc(src); err != nil {
		b.Fatal(err)
	}
	doc, err := src.GetResult()
	if err != nil {
		b.Fatal(err)
	}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		w := NewTextWriter(WithCapacity(256))
		if err := WriteAll(w, NewBinaryReader(doc)); err != nil {
			b.Fatal(err)
		}
		if _, err := w.GetResult(); err != nil {
			b.Fatal(err)
		}
	}
}
