package patient

// AddRecord appends an entry to the history and assigns it the next per-patient id.
func (p *Patient) AddRecord(e MedicalRecordEntry) MedicalRecordEntry {
	e.ID = p.NextRecordID()
	p.nextRecordID = e.ID + 1
	p.Records = append(p.Records, e)
	return e
}

// Record returns the entry with the given id.
func (p *Patient) Record(id int) (*MedicalRecordEntry, bool) {
	for i := range p.Records {
		if p.Records[i].ID == id {
			return &p.Records[i], true
		}
	}
	return nil, false
}

// RemoveRecord deletes the entry with the given id, keeping the order of the rest.
func (p *Patient) RemoveRecord(id int) bool {
	for i := range p.Records {
		if p.Records[i].ID == id {
			p.Records = append(p.Records[:i], p.Records[i+1:]...)
			return true
		}
	}
	return false
}

// History returns a copy of the entries, oldest first.
func (p *Patient) History() []MedicalRecordEntry {
	out := make([]MedicalRecordEntry, len(p.Records))
	copy(out, p.Records)
	return out
}
