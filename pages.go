// Page-tree flattening: walks the Pages tree rooted at the catalog's
// /Pages entry and records every terminal /Page node in visitation
// order, so callers get flat, 0-based page access instead of having to
// walk Kids arrays themselves.
//
// Grounded on original_source/pdfio-file.c's load_pages, including its
// habit of growing the page array in fixed increments rather than
// doubling.

package pdfio

const pagesGrowIncrement = 32

func (f *File) loadPages(root Value) error {
	if root.IsNull() {
		return nil // documents with no page tree are permitted by this engine
	}
	seen := map[*Object]bool{}
	return f.walkPageTree(root, seen)
}

func (f *File) walkPageTree(node Value, seen map[*Object]bool) error {
	if owner := node.owner(); owner != nil {
		if seen[owner] {
			return errf(KindPageTree, "page tree contains a cycle at object %d", owner.Number)
		}
		seen[owner] = true
	}

	typeName := node.Key("Type").Name()
	if typeName != "Pages" && typeName != "Page" {
		return errf(KindPageTree, "page tree node has unexpected Type %q", typeName)
	}

	kids := node.Key("Kids")
	if kids.Kind() == ArrayKind {
		for i := 0; i < kids.Len(); i++ {
			if err := f.walkPageTree(kids.Index(i), seen); err != nil {
				return err
			}
		}
		return nil
	}

	f.appendPage(node.owner())
	return nil
}

func (f *File) appendPage(obj *Object) {
	if len(f.pages) == cap(f.pages) {
		grown := make([]*Object, len(f.pages), len(f.pages)+pagesGrowIncrement)
		copy(grown, f.pages)
		f.pages = grown
	}
	f.pages = append(f.pages, obj)
}
