package engine

import (
	"context"

	"github.com/google/uuid"

	"github.com/indraarianggi/nestjs-library-app-sub000/lending/core"
	"github.com/indraarianggi/nestjs-library-app-sub000/lending/features/command/addbook"
	"github.com/indraarianggi/nestjs-library-app-sub000/lending/features/command/addcopy"
	"github.com/indraarianggi/nestjs-library-app-sub000/lending/features/command/changecopystatus"
	"github.com/indraarianggi/nestjs-library-app-sub000/lending/features/command/changememberstatus"
	"github.com/indraarianggi/nestjs-library-app-sub000/lending/features/command/registermember"
	"github.com/indraarianggi/nestjs-library-app-sub000/lending/features/command/updatepolicy"
)

// NewBook describes a title to catalogue.
type NewBook struct {
	ISBN            string
	Title           string
	Authors         []string
	PublicationYear int
}

// RegisterMember creates the borrower profile of memberID. Registering an existing member is a no-op.
func (e *Engine) RegisterMember(
	ctx context.Context,
	actor core.Actor,
	memberID uuid.UUID,
	name, email string,
	status core.MemberStatus,
) error {

	if err := checkCaller(actor); err != nil {
		return err
	}

	command := registermember.BuildCommand(memberID, name, email, status, actor, e.now())

	return execute(ctx, e, e.commands.registerMember, command)
}

// ChangeMemberStatus sets the membership status of memberID.
func (e *Engine) ChangeMemberStatus(ctx context.Context, actor core.Actor, memberID uuid.UUID, status core.MemberStatus) error {
	if err := checkCaller(actor); err != nil {
		return err
	}

	return execute(ctx, e, e.commands.changeMemberStatus, changememberstatus.BuildCommand(memberID, status, actor, e.now()))
}

// AddBook catalogues a title and returns its id.
func (e *Engine) AddBook(ctx context.Context, actor core.Actor, book NewBook) (uuid.UUID, error) {
	if err := checkCaller(actor); err != nil {
		return uuid.Nil, err
	}

	bookID := uuid.New()
	command := addbook.BuildCommand(bookID, book.ISBN, book.Title, book.Authors, book.PublicationYear, actor, e.now())

	if err := execute(ctx, e, e.commands.addBook, command); err != nil {
		return uuid.Nil, err
	}

	return bookID, nil
}

// AddCopy adds a physical copy with code to bookID and returns its id.
func (e *Engine) AddCopy(ctx context.Context, actor core.Actor, bookID uuid.UUID, code string) (uuid.UUID, error) {
	if err := checkCaller(actor); err != nil {
		return uuid.Nil, err
	}

	copyID := uuid.New()

	if err := execute(ctx, e, e.commands.addCopy, addcopy.BuildCommand(copyID, bookID, code, actor, e.now())); err != nil {
		return uuid.Nil, err
	}

	return copyID, nil
}

// ChangeCopyStatus marks a copy AVAILABLE, LOST or DAMAGED. Copies on loan cannot be changed.
func (e *Engine) ChangeCopyStatus(ctx context.Context, actor core.Actor, copyID uuid.UUID, status core.CopyStatus) error {
	if err := checkCaller(actor); err != nil {
		return err
	}

	return execute(ctx, e, e.commands.changeCopyStatus, changecopystatus.BuildCommand(copyID, status, actor, e.now()))
}

// UpdatePolicy replaces the lending policy. Operations started afterwards use the new snapshot.
func (e *Engine) UpdatePolicy(ctx context.Context, actor core.Actor, policy core.Policy) error {
	if err := checkCaller(actor); err != nil {
		return err
	}

	command := updatepolicy.BuildCommand(policy, actor, e.now())

	// a failed save leaves no LendingPolicyUpdated event or audit entry behind
	if e.policySaver != nil {
		if err := updatepolicy.Check(command); err != nil {
			return err
		}

		if err := e.policySaver.Save(ctx, policy, actor.ID); err != nil {
			return err
		}
	}

	return execute(ctx, e, e.commands.updatePolicy, command)
}
