package xmlrpc

import (
	"fmt"
	"io"
	"strings"

	"github.com/lysyi3m/argot/app/syndication"
	"github.com/lysyi3m/argot/app/xmlnode"
	"github.com/lysyi3m/argot/app/xmlwriter"
)

// Fault is an XML-RPC fault response. It is returned as an error by Client.Call.
type Fault struct {
	Code    int
	Message string
}

func (f *Fault) Error() string {
	return fmt.Sprintf("xml-rpc fault %d: %s", f.Code, f.Message)
}

type MethodCall struct {
	Method string
	Params []Value
}

func (m MethodCall) Encode(w io.Writer) error {
	if strings.TrimSpace(m.Method) == "" {
		return fmt.Errorf("%w: method name", syndication.ErrEmptyArgument)
	}

	xw := xmlwriter.New(w)
	xw.WriteStartDocument()
	xw.WriteStartElement("", "methodCall", "")
	xw.WriteElementString("methodName", "", m.Method)
	writeParams(xw, m.Params)
	xw.WriteEndElement()
	if err := xw.Flush(); err != nil {
		return fmt.Errorf("failed to write method call: %w", err)
	}
	return nil
}

func DecodeMethodCall(r io.Reader) (MethodCall, error) {
	root, err := xmlnode.Parse(r)
	if err != nil {
		return MethodCall{}, err
	}
	if root.Local != "methodCall" {
		return MethodCall{}, fmt.Errorf("expected methodCall, got %s", root.Local)
	}

	call := MethodCall{Method: root.ChildValue("", "methodName")}
	if call.Method == "" {
		return MethodCall{}, fmt.Errorf("%w: method name", syndication.ErrEmptyArgument)
	}
	call.Params, err = parseParams(root)
	if err != nil {
		return MethodCall{}, err
	}
	return call, nil
}

// MethodResponse carries either Params or a Fault.
type MethodResponse struct {
	Params []Value
	Fault  *Fault
}

func (m MethodResponse) Encode(w io.Writer) error {
	xw := xmlwriter.New(w)
	xw.WriteStartDocument()
	xw.WriteStartElement("", "methodResponse", "")
	if m.Fault != nil {
		xw.WriteStartElement("", "fault", "")
		StructValue(
			Member{Name: "faultCode", Value: IntValue(m.Fault.Code)},
			Member{Name: "faultString", Value: StringValue(m.Fault.Message)},
		).writeTo(xw)
		xw.WriteEndElement()
	} else {
		writeParams(xw, m.Params)
	}
	xw.WriteEndElement()
	if err := xw.Flush(); err != nil {
		return fmt.Errorf("failed to write method response: %w", err)
	}
	return nil
}

func DecodeMethodResponse(r io.Reader) (MethodResponse, error) {
	root, err := xmlnode.Parse(r)
	if err != nil {
		return MethodResponse{}, err
	}
	if root.Local != "methodResponse" {
		return MethodResponse{}, fmt.Errorf("expected methodResponse, got %s", root.Local)
	}

	if f := root.Child("", "fault"); f != nil {
		v, err := parseValue(f.Child("", "value"))
		if err != nil {
			return MethodResponse{}, fmt.Errorf("failed to parse fault: %w", err)
		}
		fault := &Fault{}
		if code, ok := v.Member("faultCode"); ok {
			fault.Code = code.Int()
		}
		if msg, ok := v.Member("faultString"); ok {
			fault.Message = msg.Text()
		}
		return MethodResponse{Fault: fault}, nil
	}

	params, err := parseParams(root)
	if err != nil {
		return MethodResponse{}, err
	}
	return MethodResponse{Params: params}, nil
}

func writeParams(w *xmlwriter.Writer, params []Value) {
	w.WriteStartElement("", "params", "")
	for _, p := range params {
		w.WriteStartElement("", "param", "")
		p.writeTo(w)
		w.WriteEndElement()
	}
	w.WriteEndElement()
}

func parseParams(root *xmlnode.Node) ([]Value, error) {
	params := root.Child("", "params")
	if params == nil {
		return nil, nil
	}

	var out []Value
	for i, p := range params.ChildrenNamed("", "param") {
		v, err := parseValue(p.Child("", "value"))
		if err != nil {
			return nil, fmt.Errorf("failed to parse param %d: %w", i, err)
		}
		out = append(out, v)
	}
	return out, nil
}
