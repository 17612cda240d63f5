package cache

import (
	"emberlink/internal/models"
	"reflect"
	"sync"
)

// The Redis backend serializes values to JSON, so it must know the
// concrete type to decode a hit back into. Types the stores hold are
// registered under a stable tag; an unregistered value survives a
// round-trip only as raw JSON.

var (
	typeMu    sync.RWMutex
	factories = map[string]func() interface{}{}
	typeTags  = map[reflect.Type]string{}
)

// RegisterType maps tag to the concrete type produced by factory.
func RegisterType(tag string, factory func() interface{}) {
	typeMu.Lock()
	defer typeMu.Unlock()
	factories[tag] = factory
	typeTags[reflect.TypeOf(factory())] = tag
}

func tagFor(value interface{}) string {
	typeMu.RLock()
	defer typeMu.RUnlock()
	return typeTags[reflect.TypeOf(value)]
}

func newOf(tag string) (interface{}, bool) {
	typeMu.RLock()
	defer typeMu.RUnlock()
	factory, ok := factories[tag]
	if !ok {
		return nil, false
	}
	return factory(), true
}

func init() {
	RegisterType("post", func() interface{} { return &models.Post{} })
	RegisterType("post_page", func() interface{} { return &models.PostPage{} })
	RegisterType("comment_page", func() interface{} { return &models.CommentPage{} })
}
