package timeline

// ChangeKind 变更类型
type ChangeKind int

const (
	TrackAdded ChangeKind = iota
	TrackRemoved
	TrackUpdated
	TrackMoved
	SegmentAdded
	SegmentUpdated
	SegmentRemoved
	StepUpdated
	SelectionChanged
	PlayheadMoved
)

var changeNames = map[ChangeKind]string{
	TrackAdded:       "track-added",
	TrackRemoved:     "track-removed",
	TrackUpdated:     "track-updated",
	TrackMoved:       "track-moved",
	SegmentAdded:     "segment-added",
	SegmentUpdated:   "segment-updated",
	SegmentRemoved:   "segment-removed",
	StepUpdated:      "step-updated",
	SelectionChanged: "selection",
	PlayheadMoved:    "playhead",
}

func (k ChangeKind) String() string {
	if name, ok := changeNames[k]; ok {
		return name
	}
	return "unknown"
}

// Change 时间轴变更通知
type Change struct {
	Kind      ChangeKind
	TrackID   string
	SegmentID string
	StepID    string
	Frame     int
}

// OnChange 注册变更监听，返回取消注册的函数
//
// 监听函数在修改完成后同步调用，可以读取时间轴但不应在回调中修改它。
func (t *Timeline) OnChange(fn func(Change)) (unsubscribe func()) {
	t.listeners = append(t.listeners, fn)
	idx := len(t.listeners) - 1
	return func() {
		if idx < len(t.listeners) {
			t.listeners[idx] = nil
		}
	}
}

func (t *Timeline) emit(c Change) {
	for _, fn := range t.listeners {
		if fn != nil {
			fn(c)
		}
	}
}
