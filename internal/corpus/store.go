package corpus

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// DefaultEntry 语料加载失败时使用的默认数据
const DefaultEntry = "(데이터 로드 실패) 기본 합격 예시 데이터"

var ErrNoCorpusFiles = errors.New("没有可用的语料文件")

// Snapshot 语料快照（只读）
type Snapshot struct {
	entries  []string
	sources  []string
	loadedAt time.Time
}

// Entries 返回语料副本
func (s *Snapshot) Entries() []string {
	out := make([]string, len(s.entries))
	copy(out, s.entries)
	return out
}

// Len 语料条数
func (s *Snapshot) Len() int { return len(s.entries) }

// Sources 本次成功加载的文件
func (s *Snapshot) Sources() []string { return s.sources }

// LoadedAt 加载时间
func (s *Snapshot) LoadedAt() time.Time { return s.loadedAt }

// Filter 返回包含 keyword 的所有条目
func (s *Snapshot) Filter(keyword string) []string {
	if keyword == "" {
		return nil
	}
	var matched []string
	for _, entry := range s.entries {
		if strings.Contains(entry, keyword) {
			matched = append(matched, entry)
		}
	}
	return matched
}

// Picker 随机选择器，测试时可替换为固定结果
type Picker interface {
	Intn(n int) int
}

// lockedRand math/rand.Rand 不是并发安全的
type lockedRand struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

func (r *lockedRand) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rnd.Intn(n)
}

// NewRandomPicker 创建随机选择器
func NewRandomPicker(seed int64) Picker {
	return &lockedRand{rnd: rand.New(rand.NewSource(seed))}
}

// Store 合格数据语料库。启动时写一次（或显式重载），之后只读。
// 重载通过原子替换整个快照完成，读者不会看到加载到一半的数据。
type Store struct {
	current atomic.Pointer[Snapshot]
	paths   []string
	picker  Picker
	logger  *zap.Logger
}

// Option Store 选项
type Option func(*Store)

// WithPicker 指定随机选择器
func WithPicker(p Picker) Option {
	return func(s *Store) { s.picker = p }
}

// NewStore 创建语料库，初始内容为默认语料
func NewStore(paths []string, logger *zap.Logger, opts ...Option) *Store {
	s := &Store{
		paths:  paths,
		picker: NewRandomPicker(time.Now().UnixNano()),
		logger: logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.current.Store(defaultSnapshot())
	return s
}

// NewStaticStore 用给定条目创建语料库（CLI 和测试使用）
func NewStaticStore(entries []string, logger *zap.Logger, opts ...Option) *Store {
	s := NewStore(nil, logger, opts...)
	s.Replace(entries)
	return s
}

// Load 启动时读取所有语料文件并替换快照。
// 一个文件都读不到时装入默认语料并返回 ErrNoCorpusFiles，调用方不应该因此退出。
func (s *Store) Load() error {
	snap, err := s.readAll()
	if err != nil {
		s.current.Store(defaultSnapshot())
		s.logger.Warn("找不到语料文件，使用默认数据运行", zap.Strings("paths", s.paths))
		return err
	}
	s.current.Store(snap)
	return nil
}

// Reload 重新加载语料文件。所有文件都读取失败时保留当前快照并返回 ErrNoCorpusFiles，
// 文件正在写入或被临时删除时不会把已有语料换成默认数据。
func (s *Store) Reload() error {
	s.logger.Info("重新加载语料")
	snap, err := s.readAll()
	if err != nil {
		s.logger.Warn("语料重载失败，保留当前数据", zap.Int("count", s.Len()))
		return err
	}
	s.current.Store(snap)
	return nil
}

// readAll 按顺序读取所有语料文件，跳过读取失败的文件
func (s *Store) readAll() (*Snapshot, error) {
	var (
		entries []string
		sources []string
	)

	for _, path := range s.paths {
		items, err := readFile(path)
		if err != nil {
			s.logger.Warn("语料文件读取失败，已跳过",
				zap.String("path", path),
				zap.Error(err))
			continue
		}
		entries = append(entries, items...)
		sources = append(sources, path)
	}

	if len(sources) == 0 {
		return nil, ErrNoCorpusFiles
	}

	s.logger.Info("语料加载完成",
		zap.Int("count", len(entries)),
		zap.Strings("sources", sources))
	return &Snapshot{
		entries:  entries,
		sources:  sources,
		loadedAt: time.Now(),
	}, nil
}

// Replace 用给定条目替换快照
func (s *Store) Replace(entries []string) {
	cp := make([]string, len(entries))
	copy(cp, entries)
	s.current.Store(&Snapshot{entries: cp, loadedAt: time.Now()})
}

// Snapshot 当前快照
func (s *Store) Snapshot() *Snapshot {
	return s.current.Load()
}

// Len 当前语料条数
func (s *Store) Len() int {
	return s.Snapshot().Len()
}

// Paths 语料文件路径
func (s *Store) Paths() []string {
	return s.paths
}

// Sample 在包含 keyword 的条目中均匀随机选一条，没有匹配时返回空字符串
func (s *Store) Sample(keyword string) string {
	matched := s.Snapshot().Filter(keyword)
	if len(matched) == 0 {
		return ""
	}
	return matched[s.picker.Intn(len(matched))]
}

func defaultSnapshot() *Snapshot {
	return &Snapshot{
		entries:  []string{DefaultEntry},
		loadedAt: time.Now(),
	}
}

// readFile 读取 JSON 数组文件，非字符串元素按文本处理
func readFile(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取文件失败: %w", err)
	}

	var raw []interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("解析文件失败: %w", err)
	}

	items := make([]string, 0, len(raw))
	for _, item := range raw {
		switch v := item.(type) {
		case string:
			items = append(items, v)
		default:
			items = append(items, fmt.Sprint(v))
		}
	}
	return items, nil
}
