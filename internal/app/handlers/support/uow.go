package support

import (
	"context"

	"rentbook/internal/app/uow"
)

// BeginReadOnlyUnit reuses the unit from ctx or opens a read-only one. The
// returned cleanup is nil when the unit was inherited.
func BeginReadOnlyUnit(ctx context.Context, factory uow.UoWFactory) (uow.UnitOfWork, context.Context, func(), error) {
	unit, ok := uow.FromContext(ctx)
	if ok {
		return unit, ctx, nil, nil
	}
	if factory == nil {
		return nil, ctx, nil, uow.ErrUnitOfWorkMissing
	}
	newUnit, err := factory.Begin(ctx, uow.TxOptions{ReadOnly: true})
	if err != nil {
		return nil, ctx, nil, err
	}
	execCtx := uow.InjectContext(ctx, newUnit)
	execCtx = uow.ContextWithUnitOfWork(execCtx, newUnit)
	cleanup := func() {
		_ = newUnit.Rollback(execCtx)
	}
	return newUnit, execCtx, cleanup, nil
}

// WriteUnit is a unit of work that may be owned by the caller (managed) or
// inherited from the transaction middleware.
type WriteUnit struct {
	uow.UnitOfWork
	Ctx       context.Context
	managed   bool
	committed bool
}

// BeginWriteUnit reuses the unit from ctx or opens one the caller must
// Commit; Close rolls back a managed unit that was not committed.
func BeginWriteUnit(ctx context.Context, factory uow.UoWFactory) (*WriteUnit, error) {
	if unit, ok := uow.FromContext(ctx); ok {
		return &WriteUnit{UnitOfWork: unit, Ctx: ctx}, nil
	}
	if factory == nil {
		return nil, uow.ErrUnitOfWorkMissing
	}
	unit, err := factory.Begin(ctx, uow.TxOptions{})
	if err != nil {
		return nil, err
	}
	execCtx := uow.InjectContext(ctx, unit)
	execCtx = uow.ContextWithUnitOfWork(execCtx, unit)
	return &WriteUnit{UnitOfWork: unit, Ctx: execCtx, managed: true}, nil
}

// Commit commits a managed unit; inherited units are committed by their owner.
func (w *WriteUnit) Commit() error {
	if !w.managed || w.committed {
		return nil
	}
	if err := w.UnitOfWork.Commit(w.Ctx); err != nil {
		return err
	}
	w.committed = true
	return nil
}

func (w *WriteUnit) Close() {
	if w.managed && !w.committed {
		_ = w.UnitOfWork.Rollback(w.Ctx)
	}
}
