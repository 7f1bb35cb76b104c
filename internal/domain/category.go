package domain

import (
	"fmt"
	"slices"
	"strings"
	"time"

	apperrors "github.com/utafrali/catalog/pkg/errors"
)

// Level is the depth of a node in the category tree.
type Level int

const (
	LevelMain Level = iota
	LevelSub
	LevelSubSub
	LevelLevel3
	LevelLevel4
)

// MaxDepth is the depth of the deepest addressable node.
const MaxDepth = int(LevelLevel4)

var levelNames = [...]string{"main", "sub", "subsub", "level3", "level4"}

var levelNotFound = [...]string{
	"Main category not found",
	"Subcategory not found",
	"Subsubcategory not found",
	"Level3 category not found",
	"Level4 category not found",
}

func (l Level) String() string {
	if l < LevelMain || l > LevelLevel4 {
		return fmt.Sprintf("level(%d)", int(l))
	}
	return levelNames[l]
}

func (l Level) MarshalText() ([]byte, error) {
	if l < LevelMain || l > LevelLevel4 {
		return nil, fmt.Errorf("invalid category level %d", int(l))
	}
	return []byte(levelNames[l]), nil
}

func (l *Level) UnmarshalText(b []byte) error {
	i := slices.Index(levelNames[:], string(b))
	if i < 0 {
		return fmt.Errorf("invalid category level %q", b)
	}
	*l = Level(i)
	return nil
}

// ErrLevelNotFound returns the not-found error for a missing node at level.
func ErrLevelNotFound(l Level) *apperrors.AppError {
	return apperrors.NotFoundMessage(levelNotFound[l])
}

// CategoryNode is a named node below the main category. Every child of a node
// sits exactly one level deeper than its parent; level 4 nodes are leaves.
type CategoryNode struct {
	Name     string         `json:"name" bson:"name"`
	Level    Level          `json:"level" bson:"level"`
	Children []CategoryNode `json:"children" bson:"children"`
}

// Category is the root of one tree, addressed by its unique main name.
type Category struct {
	CategoryID    string         `json:"categoryId" bson:"categoryId"`
	MainCategory  string         `json:"mainCategory" bson:"mainCategory"`
	Subcategories []CategoryNode `json:"subcategories" bson:"subcategories"`
	CreatedAt     time.Time      `json:"createdAt" bson:"createdAt"`
	UpdatedAt     time.Time      `json:"updatedAt" bson:"updatedAt"`
}

// NewCategory creates an empty tree rooted at name.
func NewCategory(id, name string, now time.Time) *Category {
	return &Category{
		CategoryID:    id,
		MainCategory:  name,
		Subcategories: []CategoryNode{},
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// CategoryPath addresses a node by its names from the main category down.
// Trailing segments are left empty.
type CategoryPath struct {
	Main   string
	Sub    string
	SubSub string
	Level3 string
	Level4 string
}

// Segments returns the non-empty segments in order. A path without a main
// segment, or with a segment following an empty one, is rejected.
func (p CategoryPath) Segments() ([]string, error) {
	all := []string{p.Main, p.Sub, p.SubSub, p.Level3, p.Level4}
	for i := range all {
		all[i] = strings.TrimSpace(all[i])
	}
	if all[0] == "" {
		return nil, apperrors.InvalidInput("mainCategory is required")
	}

	n := 1
	for n < len(all) && all[n] != "" {
		n++
	}
	for _, s := range all[n:] {
		if s != "" {
			return nil, apperrors.InvalidInput("Invalid category path: levels must be given without gaps")
		}
	}
	return all[:n], nil
}

// Depth returns the level of the node the path addresses.
func (p CategoryPath) Depth() (Level, error) {
	segs, err := p.Segments()
	if err != nil {
		return 0, err
	}
	return Level(len(segs) - 1), nil
}

// resolve walks segs[1:] below the root and returns the children slice that
// holds the addressed node together with its index.
func (c *Category) resolve(segs []string) (*[]CategoryNode, int, error) {
	children := &c.Subcategories
	idx := -1
	for depth := 1; depth < len(segs); depth++ {
		if idx >= 0 {
			children = &(*children)[idx].Children
		}
		idx = slices.IndexFunc(*children, func(n CategoryNode) bool { return n.Name == segs[depth] })
		if idx < 0 {
			return nil, 0, ErrLevelNotFound(Level(depth))
		}
	}
	return children, idx, nil
}

// childrenAt returns the children slice of the node addressed by segs.
func (c *Category) childrenAt(segs []string) (*[]CategoryNode, error) {
	if len(segs) == 1 {
		return &c.Subcategories, nil
	}
	siblings, idx, err := c.resolve(segs)
	if err != nil {
		return nil, err
	}
	return &(*siblings)[idx].Children, nil
}

func (c *Category) checkRoot(segs []string) error {
	if c.MainCategory != segs[0] {
		return ErrLevelNotFound(LevelMain)
	}
	return nil
}

// AddChild appends a new node named name under the node at path. The parent
// must be at most a level 3 node.
func (c *Category) AddChild(path CategoryPath, name string, now time.Time) error {
	segs, err := path.Segments()
	if err != nil {
		return err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return apperrors.InvalidInput("category name is required")
	}
	if len(segs) > MaxDepth {
		return apperrors.InvalidInput("level4 categories cannot have children")
	}
	if err := c.checkRoot(segs); err != nil {
		return err
	}

	children, err := c.childrenAt(segs)
	if err != nil {
		return err
	}
	if slices.ContainsFunc(*children, func(n CategoryNode) bool { return n.Name == name }) {
		return apperrors.Conflict(fmt.Sprintf("Category %q already exists at this level", name))
	}
	*children = append(*children, CategoryNode{
		Name:     name,
		Level:    Level(len(segs)),
		Children: []CategoryNode{},
	})
	c.UpdatedAt = now
	return nil
}

// Rename sets the name of the node at path. A single-segment path renames the
// main category itself.
func (c *Category) Rename(path CategoryPath, newName string, now time.Time) error {
	segs, err := path.Segments()
	if err != nil {
		return err
	}
	newName = strings.TrimSpace(newName)
	if newName == "" {
		return apperrors.InvalidInput("newName is required")
	}
	if err := c.checkRoot(segs); err != nil {
		return err
	}

	if len(segs) == 1 {
		c.MainCategory = newName
	} else {
		siblings, idx, err := c.resolve(segs)
		if err != nil {
			return err
		}
		(*siblings)[idx].Name = newName
	}
	c.UpdatedAt = now
	return nil
}

// Remove detaches the node at path together with its subtree. Removing the
// main category is the caller's job since it deletes the whole document.
func (c *Category) Remove(path CategoryPath, now time.Time) error {
	segs, err := path.Segments()
	if err != nil {
		return err
	}
	if len(segs) == 1 {
		return apperrors.InvalidInput("main category removal deletes the whole category")
	}
	if err := c.checkRoot(segs); err != nil {
		return err
	}

	siblings, idx, err := c.resolve(segs)
	if err != nil {
		return err
	}
	*siblings = slices.Delete(*siblings, idx, idx+1)
	c.UpdatedAt = now
	return nil
}

// Find returns the node at path. The main category itself has no node.
func (c *Category) Find(path CategoryPath) (*CategoryNode, error) {
	segs, err := path.Segments()
	if err != nil {
		return nil, err
	}
	if err := c.checkRoot(segs); err != nil {
		return nil, err
	}
	if len(segs) == 1 {
		return nil, apperrors.InvalidInput("path addresses the main category")
	}
	siblings, idx, err := c.resolve(segs)
	if err != nil {
		return nil, err
	}
	return &(*siblings)[idx], nil
}
