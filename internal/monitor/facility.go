package monitor

// Facility is one monitored power plant.
type Facility struct {
	// Table is the archive table holding the facility's tags.
	Table string `json:"table"`

	// Region groups facilities for display.
	Region string `json:"region"`

	// Limit is the contractual RTU active power cap. Zero disables the check.
	Limit float64 `json:"limit,omitempty"`
}

// Region is a named group of facilities.
type Region struct {
	Name       string     `json:"name"`
	Facilities []Facility `json:"facilities"`
}

// Facilities is the immutable, ordered facility list.
type Facilities struct {
	list  []Facility
	index map[string]int
}

// NewFacilities builds a facility list. Later duplicates of a table are ignored.
func NewFacilities(list []Facility) *Facilities {
	f := &Facilities{
		list:  make([]Facility, 0, len(list)),
		index: make(map[string]int, len(list)),
	}
	for _, fac := range list {
		if _, dup := f.index[fac.Table]; dup {
			continue
		}
		f.index[fac.Table] = len(f.list)
		f.list = append(f.list, fac)
	}
	return f
}

// Tables returns every table name in configuration order.
func (f *Facilities) Tables() []string {
	tables := make([]string, len(f.list))
	for i, fac := range f.list {
		tables[i] = fac.Table
	}
	return tables
}

// All returns a copy of the facility list.
func (f *Facilities) All() []Facility {
	return append([]Facility(nil), f.list...)
}

// Len returns the number of facilities.
func (f *Facilities) Len() int {
	return len(f.list)
}

// Lookup returns the facility of a table.
func (f *Facilities) Lookup(table string) (Facility, bool) {
	i, ok := f.index[table]
	if !ok {
		return Facility{}, false
	}
	return f.list[i], true
}

// Limit returns the limit of a table, or zero when unknown or unset.
func (f *Facilities) Limit(table string) float64 {
	fac, _ := f.Lookup(table)
	return fac.Limit
}

// Regions groups the facilities by region in first-seen order.
func (f *Facilities) Regions() []Region {
	var regions []Region
	pos := make(map[string]int)
	for _, fac := range f.list {
		i, ok := pos[fac.Region]
		if !ok {
			i = len(regions)
			pos[fac.Region] = i
			regions = append(regions, Region{Name: fac.Region})
		}
		regions[i].Facilities = append(regions[i].Facilities, fac)
	}
	return regions
}
