package vkmem

// FreeMemory releases an outstanding allocation back to the engine and
// invalidates its handle. Freeing a handle twice, or a handle issued by a
// different Allocator, fails with ErrUnknownMemory without touching driver
// state.
func (a *Allocator) FreeMemory(mem Memory) error {
	a.logger.Debug("Allocator::FreeMemory")

	entry, err := a.entryFor(mem)
	if err != nil {
		return err
	}

	err = entry.mem.Free()
	if err != nil {
		return err
	}

	a.outstanding.Delete(mem)
	return nil
}
