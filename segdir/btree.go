package segdir

import (
	"sync"

	"github.com/google/btree"
)

const defaultDegree = 8

// Tree is a btree-backed segment registry.
type Tree struct {
	tree *btree.BTree

	// lock must be caught before concurrent mutation
	lock *sync.RWMutex
}

func NewTree(degree int) *Tree {
	if degree <= 0 {
		degree = defaultDegree
	}
	return &Tree{
		tree: btree.New(degree),
		lock: &sync.RWMutex{},
	}
}

func (t *Tree) Put(seg *Segment) {
	t.lock.Lock()
	defer t.lock.Unlock()
	t.tree.ReplaceOrInsert(seg)
}

func (t *Tree) Get(fileNo uint32) *Segment {
	t.lock.RLock()
	defer t.lock.RUnlock()
	item := t.tree.Get(&Segment{FileNo: fileNo})
	if item == nil {
		return nil
	}
	return item.(*Segment)
}

func (t *Tree) Delete(fileNo uint32) bool {
	t.lock.Lock()
	defer t.lock.Unlock()
	return t.tree.Delete(&Segment{FileNo: fileNo}) != nil
}

func (t *Tree) Min() *Segment {
	t.lock.RLock()
	defer t.lock.RUnlock()
	item := t.tree.Min()
	if item == nil {
		return nil
	}
	return item.(*Segment)
}

func (t *Tree) Max() *Segment {
	t.lock.RLock()
	defer t.lock.RUnlock()
	item := t.tree.Max()
	if item == nil {
		return nil
	}
	return item.(*Segment)
}

// Ascend visits segments in file number order until fn returns false.
func (t *Tree) Ascend(fn func(seg *Segment) bool) {
	t.lock.RLock()
	defer t.lock.RUnlock()
	t.tree.Ascend(func(item btree.Item) bool {
		return fn(item.(*Segment))
	})
}

func (t *Tree) Len() int {
	t.lock.RLock()
	defer t.lock.RUnlock()
	return t.tree.Len()
}
