package reactive

// Dep is the set of computations subscribed to one location.
type Dep struct {
	subs map[*Effect]struct{}
}

func newDep() *Dep {
	return &Dep{subs: make(map[*Effect]struct{})}
}

func (d *Dep) has(e *Effect) bool {
	_, ok := d.subs[e]
	return ok
}

func (d *Dep) add(e *Effect) {
	d.subs[e] = struct{}{}
}

func (d *Dep) remove(e *Effect) {
	delete(d.subs, e)
}

// Len returns the number of subscribers.
func (d *Dep) Len() int {
	return len(d.subs)
}
