package services

import (
	"errors"
	"os"
	"sync"

	"github.com/sitelabel/annotator/internal/storage"
	"github.com/sitelabel/annotator/internal/vocabulary"
	"go.uber.org/zap"
)

// VocabularyService keeps the noun and verb lists in memory and writes the
// sidecar after every change. It is safe for concurrent use.
type VocabularyService struct {
	mu sync.RWMutex

	storage      *storage.Manager
	defaultNouns []string
	defaultVerbs []string
	vocab        *vocabulary.Vocabulary
	logger       *zap.Logger
}

func NewVocabularyService(storage *storage.Manager, defaultNouns, defaultVerbs []string, logger *zap.Logger) *VocabularyService {
	s := &VocabularyService{
		storage:      storage,
		defaultNouns: defaultNouns,
		defaultVerbs: defaultVerbs,
		logger:       logger,
	}
	s.Reload()
	return s
}

// Reload reads the sidecar. Without one the configured defaults are used; a
// corrupt one yields empty lists.
func (s *VocabularyService) Reload() {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.storage.ReadVocabulary()
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			s.logger.Warn("Failed to read vocabulary, starting empty", zap.Error(err))
			s.vocab = vocabulary.New(nil, nil)
			return
		}
		s.vocab = vocabulary.New(s.defaultNouns, s.defaultVerbs)
		return
	}

	vocab, err := vocabulary.Deserialize(data)
	if err != nil {
		s.logger.Warn("Corrupt vocabulary file, starting empty",
			zap.String("path", s.storage.VocabularyPath()),
			zap.Error(err),
		)
	}
	s.vocab = vocab
}

// Vocabulary returns a snapshot of both lists
func (s *VocabularyService) Vocabulary() *vocabulary.Vocabulary {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.vocab.Clone()
}

// Terms returns one list in order
func (s *VocabularyService) Terms(kind vocabulary.Kind) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.vocab.List(kind).Terms()
}

// Add appends a term. It reports false without writing when the term is blank
// or already listed.
func (s *VocabularyService) Add(kind vocabulary.Kind, term string) (bool, error) {
	return s.edit(kind, func(l *vocabulary.List) bool { return l.Add(term) })
}

func (s *VocabularyService) Remove(kind vocabulary.Kind, term string) (bool, error) {
	return s.edit(kind, func(l *vocabulary.List) bool { return l.Remove(term) })
}

func (s *VocabularyService) MoveUp(kind vocabulary.Kind, term string) (bool, error) {
	return s.edit(kind, func(l *vocabulary.List) bool { return l.MoveUp(term) })
}

func (s *VocabularyService) MoveDown(kind vocabulary.Kind, term string) (bool, error) {
	return s.edit(kind, func(l *vocabulary.List) bool { return l.MoveDown(term) })
}

// QuickSelect maps a number key to a noun, or to a verb once a noun is chosen
func (s *VocabularyService) QuickSelect(n int, currentNoun string) (vocabulary.Kind, string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.vocab.QuickSelect(n, currentNoun)
}

// Save writes the sidecar
func (s *VocabularyService) Save() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.write(s.vocab)
}

// edit applies fn to a copy and swaps it in once the sidecar is written
func (s *VocabularyService) edit(kind vocabulary.Kind, fn func(*vocabulary.List) bool) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.vocab.Clone()
	if !fn(next.List(kind)) {
		return false, nil
	}
	if err := s.write(next); err != nil {
		return false, err
	}
	s.vocab = next
	return true, nil
}

func (s *VocabularyService) write(vocab *vocabulary.Vocabulary) error {
	data, err := vocab.Serialize()
	if err != nil {
		return err
	}
	if err := s.storage.WriteVocabulary(data); err != nil {
		s.logger.Error("Failed to save vocabulary", zap.Error(err))
		return err
	}
	return nil
}
