package store

import "github.com/sakif/applytrack/internal/model"

// recordList is the ordered collection shown to the user, most recently
// added first. Every mutation is keyed by id, never by position, so a
// server response applied after the list changed still lands on the right
// element.
type recordList []model.Company

func (l recordList) index(id string) int {
	for i := range l {
		if l[i].ID == id {
			return i
		}
	}
	return -1
}

func (l recordList) get(id string) (model.Company, bool) {
	if i := l.index(id); i >= 0 {
		return l[i], true
	}
	return model.Company{}, false
}

// prepend inserts c at the front. A record already present under the same
// id is replaced in place instead.
func (l recordList) prepend(c model.Company) recordList {
	if i := l.index(c.ID); i >= 0 {
		l[i] = c
		return l
	}
	return append(recordList{c}, l...)
}

// replace swaps in c for the element with the same id. It reports false
// when no such element exists.
func (l recordList) replace(c model.Company) bool {
	i := l.index(c.ID)
	if i < 0 {
		return false
	}
	l[i] = c
	return true
}

func (l recordList) remove(id string) (recordList, bool) {
	i := l.index(id)
	if i < 0 {
		return l, false
	}
	return append(l[:i:i], l[i+1:]...), true
}

func (l recordList) clone() []model.Company {
	out := make([]model.Company, len(l))
	copy(out, l)
	return out
}
