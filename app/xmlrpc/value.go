package xmlrpc

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/lysyi3m/argot/app/xmlnode"
	"github.com/lysyi3m/argot/app/xmlwriter"
)

type Kind int

const (
	KindString Kind = iota
	KindInt
	KindBoolean
	KindDouble
	KindDateTime
	KindBase64
	KindStruct
	KindArray
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindInt:
		return "int"
	case KindBoolean:
		return "boolean"
	case KindDouble:
		return "double"
	case KindDateTime:
		return "dateTime.iso8601"
	case KindBase64:
		return "base64"
	case KindStruct:
		return "struct"
	case KindArray:
		return "array"
	default:
		return "unknown"
	}
}

// DateTimeLayout is the ISO 8601 basic form used on the wire.
const DateTimeLayout = "20060102T15:04:05"

// Value is a single XML-RPC value. The zero Value is an empty string.
type Value struct {
	kind    Kind
	text    string
	number  int
	boolean bool
	double  float64
	time    time.Time
	bytes   []byte
	members []Member
	items   []Value
}

type Member struct {
	Name  string
	Value Value
}

func StringValue(s string) Value { return Value{kind: KindString, text: s} }
func IntValue(n int) Value { return Value{kind: KindInt, number: n} }
func BooleanValue(b bool) Value { return Value{kind: KindBoolean, boolean: b} }
func DoubleValue(f float64) Value { return Value{kind: KindDouble, double: f} }
func DateTimeValue(t time.Time) Value { return Value{kind: KindDateTime, time: t} }
func Base64Value(b []byte) Value { return Value{kind: KindBase64, bytes: b} }
func StructValue(m ...Member) Value { return Value{kind: KindStruct, members: m} }
func ArrayValue(items ...Value) Value { return Value{kind: KindArray, items: items} }

func (v Value) Kind() Kind { return v.kind }
func (v Value) Text() string { return v.text }
func (v Value) Int() int { return v.number }
func (v Value) Bool() bool { return v.boolean }
func (v Value) Float() float64 { return v.double }
func (v Value) Time() time.Time { return v.time }
func (v Value) Bytes() []byte { return v.bytes }
func (v Value) Members() []Member { return v.members }
func (v Value) Items() []Value { return v.items }

// Member returns the struct member called name.
func (v Value) Member(name string) (Value, bool) {
	for _, m := range v.members {
		if m.Name == name {
			return m.Value, true
		}
	}
	return Value{}, false
}

func (v Value) writeTo(w *xmlwriter.Writer) {
	w.WriteStartElement("", "value", "")
	switch v.kind {
	case KindString:
		w.WriteElementString("string", "", v.text)
	case KindInt:
		w.WriteElementString("int", "", strconv.Itoa(v.number))
	case KindBoolean:
		b := "0"
		if v.boolean {
			b = "1"
		}
		w.WriteElementString("boolean", "", b)
	case KindDouble:
		w.WriteElementString("double", "", strconv.FormatFloat(v.double, 'f', -1, 64))
	case KindDateTime:
		w.WriteElementString("dateTime.iso8601", "", v.time.Format(DateTimeLayout))
	case KindBase64:
		w.WriteElementString("base64", "", base64.StdEncoding.EncodeToString(v.bytes))
	case KindStruct:
		w.WriteStartElement("", "struct", "")
		for _, m := range v.members {
			w.WriteStartElement("", "member", "")
			w.WriteElementString("name", "", m.Name)
			m.Value.writeTo(w)
			w.WriteEndElement()
		}
		w.WriteEndElement()
	case KindArray:
		w.WriteStartElement("", "array", "")
		w.WriteStartElement("", "data", "")
		for _, item := range v.items {
			item.writeTo(w)
		}
		w.WriteEndElement()
		w.WriteEndElement()
	}
	w.WriteEndElement()
}

func parseValue(n *xmlnode.Node) (Value, error) {
	if n == nil || n.Local != "value" {
		return Value{}, fmt.Errorf("expected value element")
	}
	if !n.HasChildren() {
		return StringValue(n.Text), nil
	}

	typed := n.Children[0]
	text := typed.Value()

	switch typed.Local {
	case "string":
		return StringValue(typed.Text), nil
	case "int", "i4", "i8":
		i, err := strconv.Atoi(text)
		if err != nil {
			return Value{}, fmt.Errorf("failed to parse int %q: %w", text, err)
		}
		return IntValue(i), nil
	case "boolean":
		switch text {
		case "1":
			return BooleanValue(true), nil
		case "0":
			return BooleanValue(false), nil
		}
		return Value{}, fmt.Errorf("invalid boolean %q", text)
	case "double":
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return Value{}, fmt.Errorf("failed to parse double %q: %w", text, err)
		}
		return DoubleValue(f), nil
	case "dateTime.iso8601":
		t, err := parseDateTime(text)
		if err != nil {
			return Value{}, err
		}
		return DateTimeValue(t), nil
	case "base64":
		b, err := base64.StdEncoding.DecodeString(strings.Join(strings.Fields(text), ""))
		if err != nil {
			return Value{}, fmt.Errorf("failed to decode base64: %w", err)
		}
		return Base64Value(b), nil
	case "struct":
		var members []Member
		for _, m := range typed.ChildrenNamed("", "member") {
			value, err := parseValue(m.Child("", "value"))
			if err != nil {
				return Value{}, fmt.Errorf("member %s: %w", m.ChildValue("", "name"), err)
			}
			members = append(members, Member{Name: m.ChildValue("", "name"), Value: value})
		}
		return StructValue(members...), nil
	case "array":
		var items []Value
		if data := typed.Child("", "data"); data != nil {
			for _, c := range data.ChildrenNamed("", "value") {
				item, err := parseValue(c)
				if err != nil {
					return Value{}, err
				}
				items = append(items, item)
			}
		}
		return ArrayValue(items...), nil
	default:
		return Value{}, fmt.Errorf("unsupported value type %s", typed.Local)
	}
}

func parseDateTime(s string) (time.Time, error) {
	for _, layout := range []string{DateTimeLayout, "2006-01-02T15:04:05", time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid dateTime.iso8601 %q", s)
}
