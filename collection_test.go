package taskcore

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectionAppendAddsSubtree(t *testing.T) {
	publisher := NewPublisher()
	rec := &recorder{}
	coll := NewCollection(KindCategory, WithCollectionPublisher(publisher))
	publisher.Register(rec.observe, coll.AddItemEventType(), coll)
	root, child, grandchild := newTree(nil)

	require.NoError(t, coll.Append(root))

	assert.Equal(t, 3, coll.Len())
	assert.Equal(t, []Item{root, child, grandchild}, coll.Items())
	require.Len(t, rec.events, 1)
	assert.Equal(t, []any{root, child, grandchild}, rec.last().Values(coll))

	require.NoError(t, coll.Append(child))
	assert.Len(t, rec.events, 1, "members are skipped")
}

func TestCollectionGetObjectByID(t *testing.T) {
	coll := NewCollection(KindNote)
	_, err := coll.GetObjectByID("missing")
	assert.True(t, errors.Is(err, ErrObjectNotFound))

	note := NewObject(KindNote, WithID("n-1"))
	require.NoError(t, coll.Append(note))

	found, err := coll.GetObjectByID("n-1")
	require.NoError(t, err)
	assert.Same(t, note, found)
	_, err = coll.GetObjectByID("n-2")
	assert.True(t, errors.Is(err, ErrObjectNotFound))
}

func TestCollectionExtendIsAtomicOnDuplicateIDs(t *testing.T) {
	coll := NewCollection(KindNote)
	require.NoError(t, coll.Append(NewObject(KindNote, WithID("dup"))))

	fresh := NewObject(KindNote, WithID("fresh"))
	clash := NewObject(KindNote, WithID("dup"))
	err := coll.Extend(fresh, clash)

	assert.True(t, errors.Is(err, ErrDuplicateID))
	assert.Equal(t, 1, coll.Len())
	assert.False(t, coll.Contains(fresh))
}

func TestCollectionRemoveTakesSubtreeAndDetaches(t *testing.T) {
	publisher := NewPublisher()
	rec := &recorder{}
	coll := NewCollection(KindCategory, WithCollectionPublisher(publisher))
	publisher.Register(rec.observe, coll.RemoveItemEventType(), nil)
	root, child, grandchild := newTree(nil)
	require.NoError(t, coll.Append(root))

	require.NoError(t, coll.Remove(child))

	assert.Equal(t, []Item{root}, coll.Items())
	assert.Nil(t, child.Parent(), "detached from the surviving parent")
	assert.Equal(t, child, grandchild.Parent(), "subtree stays intact")
	require.Len(t, rec.events, 1)
	assert.Equal(t, []any{child, grandchild}, rec.last().Values(coll))
}

func TestCollectionRemoveNonMemberFails(t *testing.T) {
	coll := NewCollection(KindNote)
	member := NewObject(KindNote)
	require.NoError(t, coll.Append(member))

	err := coll.RemoveItems(member, NewObject(KindNote))

	assert.True(t, errors.Is(err, ErrNotMember))
	assert.True(t, coll.Contains(member), "nothing removed on failure")
}

func TestCollectionContainsIsIdentity(t *testing.T) {
	coll := NewCollection(KindNote)
	require.NoError(t, coll.Append(NewObject(KindNote, WithID("same"))))

	assert.False(t, coll.Contains(NewObject(KindNote, WithID("same"))))
	assert.False(t, coll.Contains(nil))
}

func TestCollectionRootItemsAndSorting(t *testing.T) {
	beta := NewComposite(KindCategory, WithSubject("beta"))
	alpha := NewComposite(KindCategory, WithSubject("Alpha"))
	zed := alpha.NewChild(WithSubject("zed"))
	apple := alpha.NewChild(WithSubject("apple"))
	coll := NewCollection(KindCategory, WithItems(beta, alpha))

	assert.Equal(t, 4, coll.Len())
	assert.Equal(t, []Item{beta, alpha}, coll.RootItems())
	assert.Equal(t, []Item{alpha, apple, zed, beta}, coll.AllItemsSorted(nil))
	assert.Equal(t, []Item{beta, alpha, zed, apple}, coll.AllItemsSorted(Reverse(BySubject)))
}

func TestCollectionWithItemsIsSilent(t *testing.T) {
	publisher := NewPublisher()
	rec := &recorder{}
	publisher.Register(rec.observe, KindNote.EventType(ChangeAddItem), nil)

	coll := NewCollection(KindNote, WithCollectionPublisher(publisher), WithItems(NewObject(KindNote)))

	assert.Equal(t, 1, coll.Len())
	assert.Empty(t, rec.events)
}

func TestCollectionRootItemsIncludeMembersWithOutsideParent(t *testing.T) {
	parent := NewComposite(KindCategory, WithSubject("parent"))
	child := parent.NewChild(WithSubject("child"))
	coll := NewCollection(KindCategory)

	require.NoError(t, coll.Append(child))

	assert.Equal(t, 1, coll.Len())
	assert.Equal(t, []Item{child}, coll.RootItems())
	assert.Equal(t, []Item{child}, coll.AllItemsSorted(nil))
	assert.Same(t, parent, child.Parent(), "membership does not change the tree")
}

func TestCollectionAppendRestoresRemovedChild(t *testing.T) {
	publisher := NewPublisher()
	rec := &recorder{}
	publisher.Register(rec.observe, KindCategory.EventType(ChangeAddChild), nil)
	root, child, grandchild := newTree(publisher)
	coll := NewCollection(KindCategory, WithCollectionPublisher(publisher), WithItems(root))

	require.NoError(t, coll.Remove(child))
	require.Zero(t, root.ChildCount())
	require.NoError(t, coll.Append(child))

	assert.Same(t, root, child.Parent())
	assert.Equal(t, []*Composite{child}, root.Children())
	assert.Same(t, child, grandchild.Parent())
	assert.Equal(t, "root -> child -> leaf", grandchild.RecursiveSubject())
	assert.Equal(t, []Item{root, child, grandchild}, coll.AllItemsSorted(nil))
	require.Len(t, rec.events, 1)
	assert.Equal(t, child, rec.last().Value(root))
}

func TestCollectionAppendLeavesChildRootWithoutMemberParent(t *testing.T) {
	root, child, _ := newTree(nil)
	coll := NewCollection(KindCategory, WithItems(root))

	require.NoError(t, coll.Remove(child))
	require.NoError(t, coll.Remove(root))
	require.NoError(t, coll.Append(child))

	assert.Nil(t, child.Parent())
	assert.Equal(t, []Item{child}, coll.RootItems())
}

func TestCollectionAppendKeepsExplicitRemoval(t *testing.T) {
	root, child, _ := newTree(nil)
	other := NewComposite(KindCategory, WithSubject("other"))
	coll := NewCollection(KindCategory, WithItems(root, other))

	require.NoError(t, coll.Remove(child))
	require.NoError(t, other.AddChild(child))
	require.NoError(t, coll.Append(child))

	assert.Same(t, other, child.Parent(), "a new parent wins over the former one")
	assert.Zero(t, root.ChildCount())
}
