package bank

import (
	"fmt"
)

// Catalog holds the courses served by one backend.
type Catalog struct {
	courses map[string]*Course
	order   []string
}

// NewCatalog builds a catalog. The first course is the default.
func NewCatalog(courses ...*Course) (*Catalog, error) {
	c := &Catalog{courses: make(map[string]*Course)}
	for _, course := range courses {
		if _, dup := c.courses[course.Name]; dup {
			return nil, fmt.Errorf("duplicate course %q", course.Name)
		}
		c.courses[course.Name] = course
		c.order = append(c.order, course.Name)
	}
	return c, nil
}

// OpenCatalog loads every source.
func OpenCatalog(sources []Source) (*Catalog, error) {
	courses := make([]*Course, 0, len(sources))
	for _, src := range sources {
		c, err := Open(src)
		if err != nil {
			return nil, err
		}
		courses = append(courses, c)
	}
	return NewCatalog(courses...)
}

// Course looks up a course. An empty name selects the default course.
func (c *Catalog) Course(name string) (*Course, bool) {
	if name == "" {
		name = c.Default()
	}
	course, ok := c.courses[name]
	return course, ok
}

// Default returns the name of the first course, or "".
func (c *Catalog) Default() string {
	if len(c.order) == 0 {
		return ""
	}
	return c.order[0]
}

// Names returns the course names in configuration order.
func (c *Catalog) Names() []string {
	return append([]string(nil), c.order...)
}
