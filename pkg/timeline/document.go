package timeline

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/gonewx/battleskill/pkg/steps"
)

// DocumentVersion 当前文档格式版本
const DocumentVersion = 1

// 文档校验错误
var (
	ErrDuplicateID  = errors.New("duplicate id")
	ErrUnknownTrack = errors.New("unknown track")
	ErrUnknownStep  = errors.New("unknown step")
	ErrInvalidRange = errors.New("invalid frame range")
	ErrOverlap      = errors.New("overlapping segments")
	ErrRejected     = errors.New("segment rejected")
)

// Document 技能时间轴文档
type Document struct {
	Version  int            `json:"version" yaml:"version"`
	Name     string         `json:"name" yaml:"name"`
	FPS      int            `json:"fps" yaml:"fps"`
	Tracks   []Track        `json:"tracks" yaml:"tracks"`
	Segments []Segment      `json:"segments" yaml:"segments"`
	Steps    []steps.Record `json:"steps" yaml:"steps"`
}

// Document 导出时间轴
func (t *Timeline) Document(name string) Document {
	doc := Document{
		Version:  DocumentVersion,
		Name:     name,
		FPS:      t.opts.FPS,
		Tracks:   t.Tracks(),
		Segments: t.Segments(),
	}
	seen := make(map[string]bool)
	for _, seg := range doc.Segments {
		if seen[seg.StepID] {
			continue
		}
		seen[seg.StepID] = true
		if rec, ok := t.steps[seg.StepID]; ok {
			doc.Steps = append(doc.Steps, rec.Clone())
		}
	}
	return doc
}

// Validate 检查文档中的不变量，返回所有违规项
func (doc Document) Validate() []error {
	var errs []error

	if doc.Version > DocumentVersion {
		errs = append(errs, fmt.Errorf("document version %d is newer than supported %d", doc.Version, DocumentVersion))
	}

	tracks := make(map[string]bool)
	for _, tr := range doc.Tracks {
		if tr.ID == "" || tracks[tr.ID] {
			errs = append(errs, fmt.Errorf("track %q: %w", tr.ID, ErrDuplicateID))
			continue
		}
		tracks[tr.ID] = true
	}

	stepIDs := make(map[string]bool)
	for _, rec := range doc.Steps {
		if rec.ID == "" || stepIDs[rec.ID] {
			errs = append(errs, fmt.Errorf("step %q: %w", rec.ID, ErrDuplicateID))
			continue
		}
		stepIDs[rec.ID] = true
		if !rec.Type.Valid() {
			errs = append(errs, fmt.Errorf("step %q has unknown type %q", rec.ID, rec.Type))
		}
	}

	segIDs := make(map[string]bool)
	byTrack := make(map[string][]Segment)
	for _, seg := range doc.Segments {
		if seg.ID == "" || segIDs[seg.ID] {
			errs = append(errs, fmt.Errorf("segment %q: %w", seg.ID, ErrDuplicateID))
			continue
		}
		segIDs[seg.ID] = true
		if !tracks[seg.TrackID] {
			errs = append(errs, fmt.Errorf("segment %q references track %q: %w", seg.ID, seg.TrackID, ErrUnknownTrack))
		}
		if !stepIDs[seg.StepID] {
			errs = append(errs, fmt.Errorf("segment %q references step %q: %w", seg.ID, seg.StepID, ErrUnknownStep))
		}
		if seg.StartFrame < 0 || seg.EndFrame <= seg.StartFrame {
			errs = append(errs, fmt.Errorf("segment %q [%d,%d): %w", seg.ID, seg.StartFrame, seg.EndFrame, ErrInvalidRange))
			continue
		}
		byTrack[seg.TrackID] = append(byTrack[seg.TrackID], seg)
	}

	for _, tr := range doc.Tracks {
		segs := byTrack[tr.ID]
		sortSegments(segs)
		for i := 1; i < len(segs); i++ {
			prev, cur := segs[i-1], segs[i]
			if Overlaps(prev.StartFrame, prev.EndFrame, cur.StartFrame, cur.EndFrame) {
				errs = append(errs, fmt.Errorf("segments %q and %q on track %q: %w", prev.ID, cur.ID, tr.ID, ErrOverlap))
			}
		}
	}
	return errs
}

// Validate 检查时间轴当前状态的不变量
func (t *Timeline) Validate() []error {
	return t.Document("").Validate()
}

// LoadDocument 从文档构建时间轴
//
// 片段逐个经过与 AddSegment 相同的检查插入，非法的片段被跳过并记录在返回的错误中；
// 轨道的锁定状态在所有片段插入之后再应用。文档的 FPS 覆盖 opts 中的值。
func LoadDocument(doc Document, opts Options) (*Timeline, []error) {
	defaultTrack := opts.DefaultTrackName
	opts.DefaultTrackName = ""
	if doc.FPS > 0 {
		opts.FPS = doc.FPS
	}
	tl := New(opts)

	var errs []error
	locked := make(map[string]bool)
	for _, tr := range doc.Tracks {
		if tr.ID == "" {
			tr.ID = tl.opts.NewID()
		}
		if _, dup := tl.trackIndex[tr.ID]; dup {
			errs = append(errs, fmt.Errorf("track %q: %w", tr.ID, ErrDuplicateID))
			continue
		}
		locked[tr.ID] = tr.Locked
		tr.Locked = false
		tl.insertTrack(tr)
	}
	if len(tl.tracks) == 0 && defaultTrack != "" {
		tl.insertTrack(Track{ID: tl.opts.NewID(), Name: defaultTrack})
	}

	records := make(map[string]steps.Record)
	for _, rec := range doc.Steps {
		records[rec.ID] = rec
	}

	for _, seg := range doc.Segments {
		rec, ok := records[seg.StepID]
		if !ok {
			errs = append(errs, fmt.Errorf("segment %q references step %q: %w", seg.ID, seg.StepID, ErrUnknownStep))
			continue
		}
		if seg.ID == "" {
			seg.ID = tl.opts.NewID()
		}
		if _, dup := tl.segments[seg.ID]; dup {
			errs = append(errs, fmt.Errorf("segment %q: %w", seg.ID, ErrDuplicateID))
			continue
		}
		if !tl.canPlace(seg.TrackID, seg.StartFrame, seg.EndFrame, "") {
			errs = append(errs, fmt.Errorf("segment %q on track %q [%d,%d): %w",
				seg.ID, seg.TrackID, seg.StartFrame, seg.EndFrame, ErrRejected))
			continue
		}
		tl.addSegment(seg.ID, rec, seg.TrackID, seg.StartFrame, seg.EndFrame)
	}

	for id, isLocked := range locked {
		if isLocked {
			tl.trackIndex[id].Locked = true
		}
	}
	return tl, errs
}

// Format 文档编码格式
type Format int

const (
	FormatYAML Format = iota
	FormatJSON
)

// FormatForPath 根据扩展名选择格式，.json 以外都按 YAML 处理
func FormatForPath(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return FormatJSON
	}
	return FormatYAML
}

// EncodeDocument 编码文档
func EncodeDocument(doc Document, format Format) ([]byte, error) {
	if format == FormatJSON {
		return json.MarshalIndent(doc, "", "  ")
	}
	return yaml.Marshal(doc)
}

// DecodeDocument 解码文档
func DecodeDocument(data []byte, format Format) (*Document, error) {
	var doc Document
	var err error
	if format == FormatJSON {
		err = json.Unmarshal(data, &doc)
	} else {
		err = yaml.Unmarshal(data, &doc)
	}
	if err != nil {
		return nil, err
	}
	if doc.Version == 0 {
		doc.Version = DocumentVersion
	}
	return &doc, nil
}

// ReadDocument 从文件读取文档
func ReadDocument(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read skill document %s: %w", path, err)
	}
	doc, err := DecodeDocument(data, FormatForPath(path))
	if err != nil {
		return nil, fmt.Errorf("failed to parse skill document %s: %w", path, err)
	}
	return doc, nil
}

// WriteDocument 把文档写入文件
func WriteDocument(path string, doc Document) error {
	data, err := EncodeDocument(doc, FormatForPath(path))
	if err != nil {
		return fmt.Errorf("failed to encode skill document: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write skill document %s: %w", path, err)
	}
	return nil
}
