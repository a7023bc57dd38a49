package game

import (
	"errors"
	"fmt"
	"log"
	"regexp"
	"sort"

	"github.com/quasilyte/gdata/v2"
	"gopkg.in/yaml.v3"

	"github.com/gonewx/battleskill/pkg/config"
	"github.com/gonewx/battleskill/pkg/timeline"
)

// 技能存储错误
var (
	ErrSkillNotFound    = errors.New("skill not found")
	ErrInvalidSkillName = errors.New("invalid skill name")
)

// 存储路径常量
const (
	skillsObject  = "skills"
	indexObject   = "skill_index"
	indexProperty = "names"
	skillNameExpr = `^[A-Za-z0-9][A-Za-z0-9_-]{0,63}$`
)

var skillNamePattern = regexp.MustCompile(skillNameExpr)

// SkillStore 技能文档存储
//
// 每个技能保存为 skills 对象下的一个属性（YAML），skill_index 对象记录所有技能名。
// gdataManager 为 nil 时降级为内存存储。
type SkillStore struct {
	gdataManager *gdata.Manager
	memory       map[string][]byte
	names        []string
}

// NewSkillStore 创建技能存储并加载索引
//
// 参数：
//   - gdataManager: gdata 跨平台存储管理器，可为 nil（降级模式，仅内存）
//
// 返回：
//   - *SkillStore: 存储实例
//   - error: 索引损坏时返回错误（存储仍然可用，索引被视为空）
func NewSkillStore(gdataManager *gdata.Manager) (*SkillStore, error) {
	s := &SkillStore{
		gdataManager: gdataManager,
		memory:       make(map[string][]byte),
	}
	if err := s.loadIndex(); err != nil {
		log.Printf("[SkillStore] Warning: Failed to load skill index: %v (starting empty)", err)
		return s, err
	}
	return s, nil
}

func (s *SkillStore) loadIndex() error {
	if s.gdataManager == nil || !s.gdataManager.ObjectPropExists(indexObject, indexProperty) {
		return nil
	}
	data, err := s.gdataManager.LoadObjectProp(indexObject, indexProperty)
	if err != nil {
		return fmt.Errorf("failed to load skill index: %w", err)
	}
	var names []string
	if err := yaml.Unmarshal(data, &names); err != nil {
		return fmt.Errorf("failed to unmarshal skill index: %w", err)
	}
	s.names = names
	sort.Strings(s.names)
	return nil
}

func (s *SkillStore) saveIndex() error {
	if s.gdataManager == nil {
		return nil
	}
	data, err := yaml.Marshal(s.names)
	if err != nil {
		return fmt.Errorf("failed to marshal skill index: %w", err)
	}
	if err := s.gdataManager.SaveObjectProp(indexObject, indexProperty, data); err != nil {
		return fmt.Errorf("failed to save skill index: %w", err)
	}
	return nil
}

func (s *SkillStore) has(name string) bool {
	i := sort.SearchStrings(s.names, name)
	return i < len(s.names) && s.names[i] == name
}

// Save 保存技能文档，同名技能被覆盖
func (s *SkillStore) Save(name string, doc timeline.Document) error {
	if !skillNamePattern.MatchString(name) {
		return fmt.Errorf("skill %q: %w", name, ErrInvalidSkillName)
	}
	if doc.Name == "" {
		doc.Name = name
	}
	data, err := timeline.EncodeDocument(doc, timeline.FormatYAML)
	if err != nil {
		return fmt.Errorf("failed to encode skill %s: %w", name, err)
	}

	if s.gdataManager == nil {
		s.memory[name] = data
	} else if err := s.gdataManager.SaveObjectProp(skillsObject, name, data); err != nil {
		return fmt.Errorf("failed to save skill %s: %w", name, err)
	}

	if !s.has(name) {
		s.names = append(s.names, name)
		sort.Strings(s.names)
		if err := s.saveIndex(); err != nil {
			return err
		}
	}
	log.Printf("[SkillStore] Skill %s saved (%d segments)", name, len(doc.Segments))
	return nil
}

// Load 读取技能文档
func (s *SkillStore) Load(name string) (*timeline.Document, error) {
	if !s.has(name) {
		return nil, fmt.Errorf("skill %q: %w", name, ErrSkillNotFound)
	}

	var data []byte
	if s.gdataManager == nil {
		data = s.memory[name]
	} else {
		var err error
		data, err = s.gdataManager.LoadObjectProp(skillsObject, name)
		if err != nil {
			return nil, fmt.Errorf("failed to load skill %s: %w", name, err)
		}
	}

	doc, err := timeline.DecodeDocument(data, timeline.FormatYAML)
	if err != nil {
		return nil, fmt.Errorf("failed to parse skill %s: %w", name, err)
	}
	return doc, nil
}

// List 按名称排序返回所有技能
func (s *SkillStore) List() []string {
	return append([]string(nil), s.names...)
}

// Delete 删除技能；只从索引中移除，属性数据会在下次同名保存时被覆盖
func (s *SkillStore) Delete(name string) error {
	if !s.has(name) {
		return fmt.Errorf("skill %q: %w", name, ErrSkillNotFound)
	}
	i := sort.SearchStrings(s.names, name)
	s.names = append(s.names[:i], s.names[i+1:]...)
	delete(s.memory, name)
	return s.saveIndex()
}

// Scripts 返回优先从存储读取技能演出的加载器
//
// 存储中以技能ID命名的文档优先；不存在时按 SkillDef.Script 路径读取文件
func (s *SkillStore) Scripts() ScriptLoader {
	return func(skill config.SkillDef) (*timeline.Document, error) {
		if s.has(skill.ID) {
			return s.Load(skill.ID)
		}
		return FileScripts(skill)
	}
}
