// Package resolver implements httpcore.HandlerResolver as a radix-style
// path tree, the way the teacher's router matched URLs to handlers — minus
// the per-HTTP-method dispatch table, since a HandlerResolver here maps a
// URI to exactly one httpcore.RequestHandler regardless of method.
package resolver

import (
	"strings"
	"sync"

	"github.com/zhangdinet/httpcore"
)

type nodeKind int

const (
	nodeStatic nodeKind = iota
	nodeParam
	nodeCatchAll
)

type node struct {
	kind     nodeKind
	segment  string
	handler  httpcore.RequestHandler
	hasLeaf  bool
	children []*node
}

// PathResolver matches a request URI's path against a set of registered
// route patterns and returns the httpcore.RequestHandler bound to the
// longest/most-specific match. Patterns may contain ":name" parameter
// segments and a single trailing "*name" catch-all segment.
//
// PathResolver is safe for concurrent Lookup calls; Register is not meant
// to run concurrently with Lookup (register routes during setup, before the
// reactor starts serving).
type PathResolver struct {
	mu   sync.RWMutex
	root *node
}

// New returns an empty PathResolver.
func New() *PathResolver {
	return &PathResolver{root: &node{kind: nodeStatic}}
}

// Register binds pattern to handler. Pattern segments are separated by "/";
// a segment starting with ":" matches exactly one path segment, and a
// segment starting with "*" matches the rest of the path including
// slashes and must be the last segment in pattern.
func (p *PathResolver) Register(pattern string, handler httpcore.RequestHandler) {
	p.mu.Lock()
	defer p.mu.Unlock()

	cur := p.root
	for _, seg := range splitPath(pattern) {
		cur = insertSegment(cur, seg)
	}
	cur.handler = handler
	cur.hasLeaf = true
}

// Lookup implements httpcore.HandlerResolver.
func (p *PathResolver) Lookup(uri string) (httpcore.RequestHandler, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	path := uri
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}

	segments := splitPath(path)
	n := matchNode(p.root, segments)
	if n == nil || !n.hasLeaf {
		return nil, false
	}
	return n.handler, true
}

func splitPath(path string) []string {
	path = strings.Trim(path, "/")
	if path == "" {
		return nil
	}
	return strings.Split(path, "/")
}

func insertSegment(parent *node, seg string) *node {
	kind, key := classify(seg)
	for _, child := range parent.children {
		if child.kind == kind && child.segment == key {
			return child
		}
	}
	child := &node{kind: kind, segment: key}
	parent.children = append(parent.children, child)
	return child
}

func classify(seg string) (nodeKind, string) {
	switch {
	case strings.HasPrefix(seg, ":"):
		return nodeParam, seg[1:]
	case strings.HasPrefix(seg, "*"):
		return nodeCatchAll, seg[1:]
	default:
		return nodeStatic, seg
	}
}

// matchNode walks segments against the tree, preferring a static match at
// each level, then a param match, then a catch-all.
func matchNode(n *node, segments []string) *node {
	if len(segments) == 0 {
		return n
	}
	head, rest := segments[0], segments[1:]

	var paramChild, catchAllChild *node
	for _, child := range n.children {
		switch child.kind {
		case nodeStatic:
			if child.segment == head {
				if m := matchNode(child, rest); m != nil && m.hasLeaf {
					return m
				}
			}
		case nodeParam:
			paramChild = child
		case nodeCatchAll:
			catchAllChild = child
		}
	}

	if paramChild != nil {
		if m := matchNode(paramChild, rest); m != nil && m.hasLeaf {
			return m
		}
	}
	if catchAllChild != nil && catchAllChild.hasLeaf {
		return catchAllChild
	}
	return nil
}
