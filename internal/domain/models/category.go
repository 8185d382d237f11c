package models

import "time"

// Category is a node of the admin-curated forum hierarchy.
type Category struct {
	ID          string      `json:"id"`
	ParentID    *string     `json:"parentId"`
	Name        string      `json:"name"`
	Slug        string      `json:"slug"`
	Description string      `json:"description"`
	SortOrder   int         `json:"sortOrder"`
	PostCount   int         `json:"postCount"`
	CreatedAt   time.Time   `json:"createdAt"`
	Children    []*Category `json:"children"`
}

func (c *Category) NodeID() string                     { return c.ID }
func (c *Category) NodeParentID() *string              { return c.ParentID }
func (c *Category) ChildNodes() []*Category            { return c.Children }
func (c *Category) SetChildNodes(children []*Category) { c.Children = children }
