package editor

type stubEditor struct {
	*BaseSurface
	name     string
	path     string
	modified bool
	readOnly bool
	cursor   Position
	obs      []ModifyObserver
}

func newStub(name string) Constructor {
	return func(Host) Editor {
		return &stubEditor{BaseSurface: NewBaseSurface(), name: name}
	}
}

func (e *stubEditor) Load(path string) error { e.path = path; return nil }
func (e *stubEditor) Save(path string) error { e.path = path; e.SetModified(false); return nil }
func (e *stubEditor) Path() string           { return e.path }
func (e *stubEditor) IsModified() bool       { return e.modified }
func (e *stubEditor) SetModified(m bool) {
	if e.modified == m {
		return
	}
	e.modified = m
	for _, o := range e.obs {
		o(e, m)
	}
}
func (e *stubEditor) IsReadOnly() bool          { return e.readOnly }
func (e *stubEditor) SetReadOnly(r bool)        { e.readOnly = r }
func (e *stubEditor) Cursor() Position          { return e.cursor }
func (e *stubEditor) SetCursor(p Position)      { e.cursor = p }
func (e *stubEditor) OnModify(o ModifyObserver) { e.obs = append(e.obs, o) }
func (e *stubEditor) Surface() Surface          { return e.BaseSurface }
func (e *stubEditor) RequestClose() bool        { return !e.modified }
