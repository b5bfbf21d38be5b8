package store

import (
	"fmt"
	"slices"

	"budgetku/internal/core"
)

// AddTag appends a tag and assigns its color: the built-in one for default
// tag names, a random one otherwise.
func (s *Store) AddTag(name string) (string, error) {
	var color string
	err := s.mutate(OpAddTag, false, func() (bool, error) {
		if slices.Contains(s.state.Tags, name) {
			return false, fmt.Errorf("%w: %q", ErrDuplicateTag, name)
		}
		var ok bool
		if color, ok = core.DefaultTagColor(name); !ok {
			color = s.newColor()
		}
		s.state.Tags = append(s.state.Tags, name)
		s.state.TagColors[name] = color
		return true, nil
	})
	return color, err
}

// EditTag renames a tag in place, carries its color over and rewrites every
// transaction that references it. Budget keys are left untouched. An unknown
// oldName is a no-op and reports false.
// Renaming onto a name that is already a tag, or that a transaction still
// carries after that tag was deleted, fails with ErrDuplicateTag.
func (s *Store) EditTag(oldName, newName string) (bool, error) {
	found := false
	err := s.mutate(OpEditTag, false, func() (bool, error) {
		i := slices.Index(s.state.Tags, oldName)
		if i < 0 {
			return false, nil
		}
		found = true
		if oldName == newName {
			return false, nil
		}
		if slices.Contains(s.state.Tags, newName) || s.taggedLocked(newName) {
			return false, fmt.Errorf("%w: %q", ErrDuplicateTag, newName)
		}
		s.state.Tags[i] = newName
		if color, ok := s.state.TagColors[oldName]; ok {
			s.state.TagColors[newName] = color
			delete(s.state.TagColors, oldName)
		}
		for ti := range s.state.Transactions {
			tags := s.state.Transactions[ti].Tags
			for j, t := range tags {
				if t == oldName {
					tags[j] = newName
				}
			}
		}
		return true, nil
	})
	return found, err
}

func (s *Store) taggedLocked(tag string) bool {
	return slices.ContainsFunc(s.state.Transactions, func(tx core.Transaction) bool { return tx.HasTag(tag) })
}

// DeleteTag removes a tag and its color and strips it from every
// transaction. Transactions survive, possibly with no tags left. Budget
// entries are left untouched. An unknown name is a no-op and reports false.
func (s *Store) DeleteTag(name string) bool {
	found := false
	_ = s.mutate(OpDeleteTag, false, func() (bool, error) {
		i := slices.Index(s.state.Tags, name)
		if i < 0 {
			return false, nil
		}
		found = true
		s.state.Tags = slices.Delete(s.state.Tags, i, i+1)
		delete(s.state.TagColors, name)
		for ti := range s.state.Transactions {
			tx := &s.state.Transactions[ti]
			tx.Tags = slices.DeleteFunc(tx.Tags, func(t string) bool { return t == name })
		}
		return true, nil
	})
	return found
}

// InitializeTags seeds the default tags when the tag collection is empty.
// It reports whether seeding happened.
func (s *Store) InitializeTags() bool {
	var seeded bool
	_ = s.mutate(OpInitializeTags, false, func() (bool, error) {
		if len(s.state.Tags) > 0 {
			return false, nil
		}
		for _, t := range core.DefaultTags {
			s.state.Tags = append(s.state.Tags, t.Name)
			s.state.TagColors[t.Name] = t.Color
		}
		seeded = true
		return true, nil
	})
	return seeded
}

// Tags returns the tag names in display order.
func (s *Store) Tags() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.state.Tags)
}

// TagColor returns the tag's color or the neutral fallback.
func (s *Store) TagColor(tag string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.colorLocked(tag)
}

// TagColors returns a copy of the tag to color map.
func (s *Store) TagColors() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]string, len(s.state.TagColors))
	for k, v := range s.state.TagColors {
		out[k] = v
	}
	return out
}

func (s *Store) colorLocked(tag string) string {
	if c, ok := s.state.TagColors[tag]; ok && c != "" {
		return c
	}
	return core.FallbackTagColor
}
