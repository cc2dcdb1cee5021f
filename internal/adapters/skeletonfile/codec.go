// Package skeletonfile reads and writes recorded skeleton sequences as XML
// documents.
package skeletonfile

import (
	"bufio"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/golang/geo/r3"

	"github.com/okian/kinetic/internal/domain/skeleton"
	"github.com/okian/kinetic/pkg/metrics"
)

// Extension is the file extension of recordings.
const Extension = ".xml"

// Encode writes frames as an XML document. Frames are normalized first, so
// positions of untracked skeletons and joints of partially tracked ones are
// never written.
func Encode(w io.Writer, frames []skeleton.Frame) error {
	doc := document{Skeletons: make([]xmlSkeleton, len(frames))}
	for i, f := range frames {
		doc.Skeletons[i] = toXML(f.Normalize())
	}

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return fmt.Errorf("%w: %w", ErrIO, err)
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("%w: %w", ErrIO, err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("%w: %w", ErrIO, err)
	}
	_, err := io.WriteString(w, "\n")
	if err != nil {
		return fmt.Errorf("%w: %w", ErrIO, err)
	}
	return nil
}

// Decode parses an XML document. Any malformed element fails the whole
// document; no partial result is returned.
func Decode(r io.Reader) ([]skeleton.Frame, error) {
	var doc document
	dec := xml.NewDecoder(r)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParse, err)
	}
	if err := expectEOF(dec); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParse, err)
	}
	frames := make([]skeleton.Frame, len(doc.Skeletons))
	for i, s := range doc.Skeletons {
		f, err := fromXML(s)
		if err != nil {
			return nil, fmt.Errorf("%w: skeleton %d: %w", ErrParse, i, err)
		}
		frames[i] = f
	}
	return frames, nil
}

// expectEOF consumes what follows the root element. Only whitespace and
// comments may trail the document.
func expectEOF(dec *xml.Decoder) error {
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.Comment:
			continue
		case xml.CharData:
			if len(bytes.TrimSpace(t)) == 0 {
				continue
			}
			return fmt.Errorf("unexpected text %q after document", bytes.TrimSpace(t))
		case xml.StartElement:
			return fmt.Errorf("unexpected element <%s> after document", t.Name.Local)
		default:
			return fmt.Errorf("unexpected %T after document", tok)
		}
	}
}

// Write stores frames at path, replacing any existing file. The document is
// written to a temporary file in the same directory and renamed into place.
func Write(path string, frames []skeleton.Frame) (err error) {
	defer func() { record("write", err) }()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("%w: %w", ErrIO, err)
	}
	tmp, err := os.CreateTemp(dir, ".skeletons-*")
	if err != nil {
		return fmt.Errorf("%w: %w", ErrIO, err)
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()

	bw := bufio.NewWriter(tmp)
	if err := Encode(bw, frames); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := bw.Flush(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("%w: %w", ErrIO, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: %w", ErrIO, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("%w: %w", ErrIO, err)
	}
	return nil
}

// Read loads the frames stored at path.
func Read(path string) (frames []skeleton.Frame, err error) {
	defer func() { record("read", err) }()

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrIO, err)
	}
	defer f.Close()
	return Decode(bufio.NewReader(f))
}

func record(op string, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	metrics.RecordCodecOperation(op, status)
}

func toXML(f skeleton.Frame) xmlSkeleton {
	s := xmlSkeleton{ID: strconv.Itoa(f.TrackingID), State: f.State.String()}
	if f.State != skeleton.NotTracked {
		s.Position = positionXML(f.Position)
	}
	if f.State == skeleton.Tracked {
		s.Joints = &xmlJoints{Joints: make([]xmlJoint, len(f.Joints))}
		for i, j := range f.Joints {
			s.Joints.Joints[i] = xmlJoint{
				Type:     j.Type.String(),
				TypeID:   strconv.Itoa(int(j.Type)),
				State:    j.State.String(),
				Position: positionXML(j.Position),
			}
		}
	}
	return s
}

func fromXML(s xmlSkeleton) (skeleton.Frame, error) {
	id, err := strconv.Atoi(s.ID)
	if err != nil {
		return skeleton.Frame{}, fmt.Errorf("id %q: %w", s.ID, err)
	}
	state, err := skeleton.ParseTrackingState(s.State)
	if err != nil {
		return skeleton.Frame{}, err
	}
	f := skeleton.Frame{TrackingID: id, State: state}
	if state == skeleton.NotTracked {
		return f, nil
	}

	if f.Position, err = positionFromXML(s.Position); err != nil {
		return skeleton.Frame{}, err
	}
	if state != skeleton.Tracked || s.Joints == nil {
		return f, nil
	}

	f.Joints = make([]skeleton.Joint, 0, len(s.Joints.Joints))
	for _, xj := range s.Joints.Joints {
		j, err := jointFromXML(xj)
		if err != nil {
			return skeleton.Frame{}, err
		}
		f.Joints = append(f.Joints, j)
	}
	return f, nil
}

func jointFromXML(xj xmlJoint) (skeleton.Joint, error) {
	t, err := skeleton.ParseJointType(xj.Type)
	if err != nil {
		return skeleton.Joint{}, err
	}
	id, err := strconv.Atoi(xj.TypeID)
	if err != nil {
		return skeleton.Joint{}, fmt.Errorf("joint %s typeId %q: %w", xj.Type, xj.TypeID, err)
	}
	if byID, err := skeleton.JointTypeFromID(id); err != nil || byID != t {
		return skeleton.Joint{}, fmt.Errorf("joint type %s does not match typeId %d", xj.Type, id)
	}
	state, err := skeleton.ParseJointTrackingState(xj.State)
	if err != nil {
		return skeleton.Joint{}, err
	}
	pos, err := positionFromXML(xj.Position)
	if err != nil {
		return skeleton.Joint{}, fmt.Errorf("joint %s: %w", xj.Type, err)
	}
	return skeleton.Joint{Type: t, State: state, Position: pos}, nil
}

func positionXML(v r3.Vector) *xmlPosition {
	return &xmlPosition{X: formatFloat(v.X), Y: formatFloat(v.Y), Z: formatFloat(v.Z)}
}

func positionFromXML(p *xmlPosition) (r3.Vector, error) {
	if p == nil {
		return r3.Vector{}, errors.New("missing Position")
	}
	var v r3.Vector
	var err error
	if v.X, err = parseFloat("posx", p.X); err != nil {
		return r3.Vector{}, err
	}
	if v.Y, err = parseFloat("posy", p.Y); err != nil {
		return r3.Vector{}, err
	}
	if v.Z, err = parseFloat("posz", p.Z); err != nil {
		return r3.Vector{}, err
	}
	return v, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func parseFloat(attr, s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%s %q: %w", attr, s, err)
	}
	return v, nil
}
