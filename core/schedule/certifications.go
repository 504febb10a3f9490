package schedule

// RequiredCertifications lists the certifications a trainer needs to teach course.
func RequiredCertifications(course *Course) CertificationList {
	if course == nil {
		return CertificationList{}
	}
	return ParseCertifications(course.Certifications...)
}

// FilterTrainers keeps the trainers holding every required certification, in catalog order.
func FilterTrainers(trainers []Trainer, required CertificationList) []Trainer {
	if len(required) == 0 {
		out := make([]Trainer, len(trainers))
		copy(out, trainers)
		return out
	}
	out := make([]Trainer, 0, len(trainers))
	for _, t := range trainers {
		if t.Certifications.Covers(required) {
			out = append(out, t)
		}
	}
	return out
}

// SessionTrainerOptions is FilterTrainers plus whoever is already assigned to sd, so that a change in
// the required certifications never clears an existing assignment.
func SessionTrainerOptions(trainers []Trainer, required CertificationList, sd SessionDate) []Trainer {
	assigned := NewIDSet(sd.TrainerID, sd.CoTrainerID)
	out := make([]Trainer, 0, len(trainers))
	for _, t := range trainers {
		if assigned.Has(t.ID) || len(required) == 0 || t.Certifications.Covers(required) {
			out = append(out, t)
		}
	}
	return out
}

// MissingCertifications returns the required certifications trainer lacks.
func MissingCertifications(trainer Trainer, required CertificationList) CertificationList {
	missing := CertificationList{}
	for _, r := range required {
		if !trainer.Certifications.Has(r) {
			missing = append(missing, r)
		}
	}
	return missing
}
