package runtime

import (
	"fmt"

	"github.com/aretw0/aggregate/pkg/domain"
	"github.com/aretw0/aggregate/pkg/entity"
	"github.com/aretw0/aggregate/pkg/rules"
)

// reconcileAssociations reconciles every association in declaration order and writes the
// result back onto the entity. Associations absent from the input are left untouched.
func (b *build) reconcileAssociations() error {
	for _, assoc := range b.rules.Associations {
		raw, present := b.input[assoc.Name]
		if !present {
			continue
		}

		var err error
		switch assoc.Cardinality {
		case domain.Many:
			err = b.reconcileMany(assoc, raw)
		default:
			err = b.reconcileOne(assoc, raw)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// reconcileOne builds, updates or clears a single-valued association.
// An explicit nil clears a deletable association and is ignored otherwise.
func (b *build) reconcileOne(assoc rules.AssociationSpec, raw any) error {
	if raw == nil {
		if !assoc.Deletable {
			return nil
		}
		b.engine.emitMember(b, assoc.Name, domain.MemberCleared, -1)
		return entity.Set(b.entity, assoc.Name, nil)
	}

	nested, ok := domain.AsInputMap(raw)
	if !ok {
		return fmt.Errorf("%s: %w: expected a map, got %T", assoc.Name, domain.ErrInvalidInputShape, raw)
	}
	if assoc.Deletable && b.rules.DeletePredicate()(nested) {
		b.engine.emitMember(b, assoc.Name, domain.MemberCleared, -1)
		return entity.Set(b.entity, assoc.Name, nil)
	}

	target, ok := entity.Ref(b.entity, assoc.Name)
	if !ok {
		return fmt.Errorf("%w: %T has no association %q", domain.ErrUnknownField, b.entity, assoc.Name)
	}
	action := domain.MemberUpdated
	if entity.IsNil(target) {
		target = assoc.Factory()()
		action = domain.MemberCreated
	}

	if err := b.engine.run(b.child(assoc, assoc.Name), target, nested); err != nil {
		return fmt.Errorf("%s: %w", assoc.Name, err)
	}
	b.engine.emitMember(b, assoc.Name, action, -1)
	return entity.Set(b.entity, assoc.Name, target)
}

// reconcileMany merges a sequence of input items into a collection association.
//
// Each item is, in order: skipped when rejected; matched against the existing members;
// removed when matched, deletable and flagged for deletion; updated in place when matched;
// otherwise built into a new member. The result keeps surviving members in their original
// order, followed by new members in input order.
func (b *build) reconcileMany(assoc rules.AssociationSpec, raw any) error {
	if raw == nil {
		return nil
	}
	items, ok := domain.AsSequence(raw)
	if !ok {
		return fmt.Errorf("%s: %w: expected a list, got %T", assoc.Name, domain.ErrInvalidInputShape, raw)
	}

	existing, err := entity.Members(b.entity, assoc.Name)
	if err != nil {
		return err
	}

	match := b.rules.MatcherFor(assoc)
	shouldDelete := b.rules.DeletePredicate()
	removed := make([]bool, len(existing))
	var created []any

	for i, rawItem := range items {
		segment := fmt.Sprintf("%s[%d]", assoc.Name, i)
		item, ok := domain.AsInputMap(rawItem)
		if !ok {
			return fmt.Errorf("%s: %w: expected a map, got %T", segment, domain.ErrInvalidInputShape, rawItem)
		}

		// Rejection wins over matching: a rejected item never touches the collection.
		if assoc.RejectIf != nil && assoc.RejectIf(item) {
			b.engine.emitMember(b, assoc.Name, domain.MemberRejected, i)
			continue
		}

		idx := -1
		for j, member := range existing {
			if !removed[j] && match(member, item) {
				idx = j
				break
			}
		}

		deleting := assoc.Deletable && shouldDelete(item)

		switch {
		case idx >= 0 && deleting:
			removed[idx] = true
			b.engine.emitMember(b, assoc.Name, domain.MemberDeleted, i)
		case idx >= 0:
			if err := b.engine.run(b.child(assoc, segment), existing[idx], item); err != nil {
				return fmt.Errorf("%s: %w", segment, err)
			}
			b.engine.emitMember(b, assoc.Name, domain.MemberUpdated, i)
		case deleting:
			// Nothing to delete; a deletion request never creates a member.
			b.engine.emitMember(b, assoc.Name, domain.MemberRejected, i)
		default:
			member := assoc.Factory()()
			if err := b.engine.run(b.child(assoc, segment), member, item); err != nil {
				return fmt.Errorf("%s: %w", segment, err)
			}
			created = append(created, member)
			b.engine.emitMember(b, assoc.Name, domain.MemberCreated, i)
		}
	}

	result := make([]any, 0, len(existing)+len(created))
	for j, member := range existing {
		if !removed[j] {
			result = append(result, member)
		}
	}
	result = append(result, created...)
	return entity.SetMembers(b.entity, assoc.Name, result)
}
