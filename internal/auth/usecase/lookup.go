package usecase

import authdomain "workbid-backend/internal/auth/domain"

// lookupStep is one stage of the user lookup sequence.
type lookupStep func(key string) (*authdomain.User, error)

// ResolveUser finds a user by an ambiguous key: opaque id first, then
// contact number as a fallback. The steps run strictly in sequence:
// the fallback only starts after the id lookup has definitively
// missed, and a hard error at any step aborts the sequence.
func (u *authUsecase) ResolveUser(key string) (*authdomain.User, error) {
	steps := []lookupStep{
		u.userRepo.FindByID,
		u.userRepo.FindByContact,
	}
	for _, step := range steps {
		user, err := step(key)
		if err != nil {
			return nil, err
		}
		if user != nil {
			return user, nil
		}
	}
	return nil, nil
}
