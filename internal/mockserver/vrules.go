package mockserver

import (
	"github.com/protomem/pmaster/internal/model"
	"github.com/protomem/pmaster/internal/validator"
)

// Validation rules

const _maxNameRunes = 100

func validateCreateProject(v *validator.Validator, req createProjectRequest) {
	v.CheckField(validator.NotBlank(req.Name), "name", "cannot be blank")
	v.CheckField(validator.MaxRunes(req.Name, _maxNameRunes), "name", "too long")
	v.CheckField(validator.NotBlank(req.Description), "description", "cannot be blank")
	v.CheckField(validator.NotBlank(req.Start), "start", "cannot be blank")
	v.CheckField(validator.NotBlank(req.End), "end", "cannot be blank")
}

func validateCreateModule(v *validator.Validator, req createModuleRequest) {
	v.CheckField(validator.NotBlank(req.Title), "title", "cannot be blank")
	v.CheckField(validator.NotBlank(req.Description), "description", "cannot be blank")
	validateStatus(v, req.Status)
}

func validateTask(v *validator.Validator, req taskRequest) {
	v.CheckField(validator.NotBlank(req.Title), "title", "cannot be blank")
	v.CheckField(validator.NotBlank(req.Priority), "priority", "cannot be blank")
	validateStatus(v, req.Status)
}

func validateTeam(v *validator.Validator, req teamRequest) {
	v.CheckField(validator.NotBlank(req.Name), "name", "cannot be blank")
	v.CheckField(validator.MaxRunes(req.Name, _maxNameRunes), "name", "too long")
	v.CheckField(validator.NotBlank(req.Description), "description", "cannot be blank")
}

func validateCreateUser(v *validator.Validator, req createUserRequest) {
	v.CheckField(validator.NotBlank(req.Name), "name", "cannot be blank")
	v.CheckField(validator.MaxRunes(req.Name, _maxNameRunes), "name", "too long")
	v.CheckField(validator.IsEmail(req.Email), "email", "invalid email address")
	v.CheckField(validator.NotBlank(req.Phone), "phone", "cannot be blank")
	v.CheckField(model.Role(req.Role).Known(), "role", "unknown role code")
}

func validateStatus(v *validator.Validator, status string) {
	v.CheckField(model.Status(status).Known(), "status", "unknown status code")
}
